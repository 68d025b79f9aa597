package db

import "context"

// CompanyCount is the number of stored postings for one company.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Stats summarizes the stored postings.
type Stats struct {
	Total        int            `json:"total"`
	Remote       int            `json:"remote"`
	WithSalary   int            `json:"with_salary"`
	WithYOE      int            `json:"with_yoe"`
	AvgSalary    *float64       `json:"avg_salary"`
	AvgYOE       *float64       `json:"avg_yoe"`
	TopCompanies []CompanyCount `json:"top_companies"`
}

// JobStats aggregates counts and averages over the jobs table. topN bounds
// the company list.
func (db *DB) JobStats(ctx context.Context, topN int) (*Stats, error) {
	var s Stats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE remote),
		        COUNT(salary_avg),
		        COUNT(yoe_avg),
		        AVG(salary_avg),
		        AVG(yoe_avg)
		 FROM jobs`,
	).Scan(&s.Total, &s.Remote, &s.WithSalary, &s.WithYOE, &s.AvgSalary, &s.AvgYOE)
	if err != nil {
		return nil, storeError("compute job stats", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT company_name, COUNT(*) AS n
		 FROM jobs
		 WHERE company_name IS NOT NULL
		 GROUP BY company_name
		 ORDER BY n DESC, company_name
		 LIMIT $1`,
		topN,
	)
	if err != nil {
		return nil, storeError("count jobs by company", err)
	}
	defer rows.Close()

	s.TopCompanies = []CompanyCount{}
	for rows.Next() {
		var c CompanyCount
		if err := rows.Scan(&c.Company, &c.Count); err != nil {
			return nil, storeError("scan company count", err)
		}
		s.TopCompanies = append(s.TopCompanies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("count jobs by company", err)
	}
	return &s, nil
}

package db

const dropJobsSQL = `
DROP TABLE IF EXISTS job_embeddings;
DROP TABLE IF EXISTS jobs;`

const createJobsSQL = `
CREATE TABLE jobs (
    job_id          TEXT PRIMARY KEY,
    job_url         TEXT,
    source          TEXT,
    title           TEXT,
    company_name    TEXT,
    location        TEXT,
    city            TEXT,
    state           TEXT,
    country         TEXT,
    remote          BOOLEAN NOT NULL DEFAULT FALSE,
    industry        TEXT,
    seniority_level TEXT,
    employment_type TEXT,
    job_function    TEXT,
    salary_raw      TEXT,
    salary_min      DOUBLE PRECISION,
    salary_max      DOUBLE PRECISION,
    salary_avg      DOUBLE PRECISION,
    yoe_raw         TEXT,
    yoe_min         DOUBLE PRECISION,
    yoe_max         DOUBLE PRECISION,
    yoe_avg         DOUBLE PRECISION,
    education       TEXT NOT NULL DEFAULT '[]',
    skills          TEXT,
    description     TEXT,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX idx_jobs_company_name ON jobs (company_name);
CREATE INDEX idx_jobs_created_at ON jobs (created_at);`

const createRunsSQL = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
    id              UUID PRIMARY KEY,
    trigger         TEXT NOT NULL,
    status          TEXT NOT NULL,
    requested       INTEGER NOT NULL DEFAULT 0,
    scraped         INTEGER NOT NULL DEFAULT 0,
    stored          INTEGER NOT NULL DEFAULT 0,
    failed          INTEGER NOT NULL DEFAULT 0,
    duplicates      INTEGER NOT NULL DEFAULT 0,
    error_message   TEXT,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at    TIMESTAMPTZ
);`

const createEmbeddingsSQL = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS job_embeddings (
    job_id      TEXT PRIMARY KEY REFERENCES jobs (job_id) ON DELETE CASCADE,
    model       TEXT NOT NULL,
    embedding   vector NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// jobColumns is the column list shared by every jobs SELECT; scanJob reads
// values in this order.
const jobColumns = `job_id, job_url, source, title, company_name,
    location, city, state, country, remote,
    industry, seniority_level, employment_type, job_function,
    salary_raw, salary_min, salary_max, salary_avg,
    yoe_raw, yoe_min, yoe_max, yoe_avg,
    education, skills, description, created_at`

package sqlite

const schema = `
-- Generated articles
CREATE TABLE IF NOT EXISTS generated_content (
    id TEXT PRIMARY KEY,
    keyword TEXT NOT NULL,
    title TEXT NOT NULL CHECK(length(title) <= 500),
    seo_title TEXT NOT NULL DEFAULT '',
    slug TEXT NOT NULL DEFAULT '',
    meta_description TEXT NOT NULL DEFAULT '',
    html TEXT NOT NULL,
    word_count INTEGER NOT NULL DEFAULT 0,
    coverage_score REAL NOT NULL DEFAULT 0,
    optimization TEXT NOT NULL DEFAULT 'skipped',
    metrics TEXT NOT NULL DEFAULT '{}',
    refs TEXT NOT NULL DEFAULT '[]',
    schema_json TEXT NOT NULL DEFAULT '{}',
    generated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_content_keyword ON generated_content(keyword);
CREATE INDEX IF NOT EXISTS idx_content_generated_at ON generated_content(generated_at);
CREATE INDEX IF NOT EXISTS idx_content_slug ON generated_content(slug);
`

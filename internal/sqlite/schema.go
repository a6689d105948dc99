package sqlite

// Timestamps are stored as fixed-width UTC text so range predicates can
// compare them lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS dependencies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    test_version TEXT NOT NULL,
    prod_version TEXT,
    test_last_updated TEXT,
    production_last_updated TEXT,
    test_next_update TEXT,
    production_next_update TEXT,
    source_url TEXT,
    changelog_url TEXT,
    homepage_url TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deps_test_last_updated ON dependencies(test_last_updated);
CREATE INDEX IF NOT EXISTS idx_deps_production_last_updated ON dependencies(production_last_updated);
CREATE INDEX IF NOT EXISTS idx_deps_test_next_update ON dependencies(test_next_update);
CREATE INDEX IF NOT EXISTS idx_deps_production_next_update ON dependencies(production_next_update);
CREATE INDEX IF NOT EXISTS idx_deps_created_at ON dependencies(created_at);
`

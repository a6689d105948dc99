package db

// SchemaSQL defines the dependency table. Optional columns are option<...>
// so absent values stay NONE instead of empty strings.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS dependency SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON dependency TYPE string;
    DEFINE FIELD IF NOT EXISTS test_version ON dependency TYPE string;
    DEFINE FIELD IF NOT EXISTS prod_version ON dependency TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS test_last_updated ON dependency TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS production_last_updated ON dependency TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS test_next_update ON dependency TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS production_next_update ON dependency TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS source_url ON dependency TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS changelog_url ON dependency TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS homepage_url ON dependency TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON dependency TYPE datetime;
    DEFINE FIELD IF NOT EXISTS updated_at ON dependency TYPE datetime;

    -- Names are unique; concurrent creates of the same name fail on this index
    DEFINE INDEX IF NOT EXISTS dependency_name ON dependency FIELDS name UNIQUE;
    DEFINE INDEX IF NOT EXISTS dependency_created ON dependency FIELDS created_at;
    DEFINE INDEX IF NOT EXISTS dependency_test_last ON dependency FIELDS test_last_updated;
    DEFINE INDEX IF NOT EXISTS dependency_prod_last ON dependency FIELDS production_last_updated;
    DEFINE INDEX IF NOT EXISTS dependency_test_next ON dependency FIELDS test_next_update;
    DEFINE INDEX IF NOT EXISTS dependency_prod_next ON dependency FIELDS production_next_update;
`

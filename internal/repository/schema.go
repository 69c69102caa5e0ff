package repository

// Schema definitions for the artifact store.
// Compatible with both SQLite and PostgreSQL.

const schemaModelArtifacts = `
CREATE TABLE IF NOT EXISTS model_artifacts (
    name TEXT NOT NULL,
    version TEXT NOT NULL,
    format TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (name, version)
);

CREATE INDEX IF NOT EXISTS idx_model_artifacts_created ON model_artifacts(name, created_at);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaModelArtifacts,
	}
}

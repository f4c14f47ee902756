package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Record(record_id);",
	"CREATE INDEX ON :Entity(name);",
}

// UpsertEntitiesQuery expects $rows as a list of {record_id, name, value} maps.
const UpsertEntitiesQuery = `
UNWIND $rows AS row
MERGE (r:Record {record_id: row.record_id})
MERGE (e:Entity {name: row.name, value: row.value})
MERGE (r)-[:HAS_ENTITY]->(e)
`

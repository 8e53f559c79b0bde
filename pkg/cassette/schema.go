package cassette

const schema = `
CREATE TABLE IF NOT EXISTS cassettes (
  name TEXT NOT NULL PRIMARY KEY,
  data BLOB NOT NULL,
  updated_at INTEGER NOT NULL
);
`

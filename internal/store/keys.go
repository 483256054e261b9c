package store

// Key layout:
//
//	<prefix><id>                          document JSON
//	<prefix>idx:<index>:<value>           id (unique index)
//	<prefix>idx:<index>:<value>:<id>      id (multi-valued index)
const indexSegment = "idx:"

// entityKey builds the primary key of a document.
func entityKey(prefix, id string) []byte {
	buf := make([]byte, 0, len(prefix)+len(id))
	buf = append(buf, prefix...)
	buf = append(buf, id...)
	return buf
}

// indexKey builds the key for a unique index value.
func indexKey(prefix, indexName, value string) []byte {
	buf := make([]byte, 0, len(prefix)+len(indexSegment)+len(indexName)+1+len(value))
	buf = append(buf, prefix...)
	buf = append(buf, indexSegment...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	return buf
}

// multiIndexKey builds the key for one member of a multi-valued index.
func multiIndexKey(prefix, indexName, value, id string) []byte {
	buf := indexKey(prefix, indexName, value)
	buf = append(buf, ':')
	buf = append(buf, id...)
	return buf
}

// multiIndexPrefix is the scan prefix covering every member for value.
func multiIndexPrefix(prefix, indexName, value string) []byte {
	return append(indexKey(prefix, indexName, value), ':')
}

// indexPrefix is the prefix shared by every index key of an entity.
func indexPrefix(prefix string) []byte {
	return append([]byte(prefix), indexSegment...)
}

// Package services contains the application core: the index
// coordinator, lexical search, hybrid retrieval and grounded answer
// generation. Services depend only on domain types and driven ports,
// never on adapter packages.
package services

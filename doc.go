/*
Package exprmig migrates legacy IoT agent expressions stored in MongoDB.

Device and group documents of an IoT agent may carry expressions written in the legacy
"${...@...}" dialect in their active attributes, lazy attributes, commands and a few scalar
fields. exprmig selects those documents, records every occurrence, rewrites each expression
with a user-supplied translation table and, in commit mode, replaces the documents in the
store while keeping their pre-image for rollback.

# Concept

A migration is a single pass over a cursor. For each document the engine:

  - snapshots the document (the backup),
  - walks the expression sites in a fixed order and registers each legacy expression,
  - rewrites the expressions found in the translation table, leaving the others as-is,
  - normalizes expressionLanguage according to the configured policy,
  - replaces the document in the store when committing.

Without a translation table the run only reports; commit mode requires one.

# Usage

	store, err := mongo.Connect(ctx, "mongodb://localhost:27017", "iotagentjson", "devices")
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close(ctx)

	table, err := exprmig.LoadTranslationTable("translation.json")
	if err != nil {
		log.Fatal(err)
	}

	m, err := exprmig.New(store,
		exprmig.WithTranslation(table),
		exprmig.WithCommit(true),
		exprmig.WithBackupStore(file.New("")),
	)
	if err != nil {
		log.Fatal(err)
	}

	res, err := m.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Updated %d documents (session %s)\n", res.Replaced, res.SessionID)

A committed session can be undone with Rollback(ctx, res.SessionID).
*/
package exprmig

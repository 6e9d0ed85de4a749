// Package core ties the table loader to a store.
//
// It holds no transport code and is shared by the HTTP server and the CLI.
//
// # Importing
//
// [Service.Import] parses a reader with the configured [table.Options] and
// saves the result. Imports run under an [ImportLimiter] so at most
// MaxConcurrent files are parsed at once; callers that cannot get a slot within
// MaxWait receive [ErrTooManyImports].
//
//	svc := core.NewService(store.NewMemoryStore(), core.Options{
//	    Loader:        table.Options{Delimiter: ';'},
//	    MaxConcurrent: 4,
//	})
//	meta, err := svc.Import(ctx, "sales.csv", file)
//
// Rows whose field count differs from the header are kept unless
// Loader.Strict is set. When kept, Import logs a warning with the count.
//
// # Errors
//
// [MapError] translates any error returned here into a [UserMessage] with a
// short code (FILE003, TBL001, ...) that is safe to show to a client.
package core

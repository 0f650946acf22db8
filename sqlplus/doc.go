// Package sqlplus runs Oracle queries through the sqlplus command line tool
// and turns its HTML markup output into typed rows.
//
// sqlplus does not always report failures through its exit status, so the
// output is also scanned for error, warning and unknown-command markers
// unless the caller disables that check for a call:
//
//	client, err := sqlplus.NewClient(sqlplus.Config{
//		Hostname: "localhost", Database: "xe",
//		Username: "scott", Password: "tiger",
//		Cast: true, CheckErrors: true,
//	})
//	res, err := client.RunQuery(ctx, "SELECT %s AS response FROM DUAL;", []any{42})
//
// Assemble, ParseTable and Cast are pure functions and can be used on
// captured output without running sqlplus.
package sqlplus

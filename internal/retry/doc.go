// Package retry provides retry logic with exponential backoff for dialing
// PostgreSQL sessions, and the error classification the pool uses to decide
// whether a failed session can be reused.
//
// # Example Usage
//
//	classifier := retry.NewPostgreSQLErrorClassifier()
//	strategy := retry.NewExponentialBackoff(3)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    session, err = connector.Connect(ctx)
//	    return err
//	})
//
// # Error Classification
//
// IsTransient separates retryable dial failures (refused, reset, class 08/53/57)
// from fatal ones (bad password, unknown database). IsConnectionLost separates
// query errors that leave the session broken from ordinary statement errors
// such as constraint violations.
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. Use WithOnRetry() to create
// independent configurations per goroutine.
package retry

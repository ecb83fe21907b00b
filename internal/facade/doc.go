// Package facade exposes the query executor through four asynchronous calling
// conventions:
//
//   - Callback: plain completion callbacks
//   - Futures: eager single-resolution Future values with composition
//   - Unis: lazy Uni pipelines (nothing runs until subscribed)
//   - Singles: lazy Single/Completable streams with disposable subscriptions
//
// Every facade is a stateless translation of Executor.Submit and delivers
// exactly one terminal signal per request.
package facade

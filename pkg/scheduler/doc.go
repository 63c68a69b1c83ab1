// Package scheduler sweeps the configured accounts on a fixed interval.
//
// Sweeps are single-flight by construction: one background loop runs them
// sequentially and only checks for due work between sweeps. Each sweep takes
// a snapshot of the account set at its start, crawls the accounts in
// registration order and paces between them with a fixed delay. A stop
// request interrupts a pending delay but never an account crawl already
// in progress.
//
// Usage:
//
//	sched := scheduler.New(driver, cfg.Crawl.Accounts, cfg.Crawl.IntervalHours, cfg.Crawl.AccountInterval)
//	sched.Start() // first sweep runs before Start returns
//	defer sched.Stop()
package scheduler

// Package cache holds the contract shared by the sport data stores and the
// Manager that routes fetched payloads to them.
//
// # Overview
//
// A fetch produces one single-language payload tagged with a dto.Category.
// The Manager hands the payload to every registered Store that declared the
// category, concurrently, and waits for all of them. Stores never see each
// other, so a failing store cannot stop a sibling from saving:
//
//	m := cache.NewManager(logger, collectors, cache.Catch)
//	if err := m.RegisterStore("events", events); err != nil {
//		return err
//	}
//	err := m.SaveDto(ctx, id, payload, lang.MustParse("en"), dto.CategoryMatchSummary, requester)
//
// # Exception strategy
//
// Under Throw the joined store errors, upstream FetchErrors and lookup
// NotFoundErrors reach the caller. Under Catch they are logged at warn level
// and the caller gets whatever the cache holds.
//
// # Keys
//
// KeySerializer builds the keys stores use for in-flight coordination and
// memo tables. URNs, languages and times have fixed textual forms, a nil
// *time.Time stands for the live schedule, and any other value falls back to
// JSON.
//
// # Configuration
//
// Config carries the shared options and one StorageConfig per store.
// StorageConfig maps onto the sturdyc options of internal/cacheinfra.
package cache

// Package resolve matches a noisy media description against a keyword-search
// catalog.
//
// A Query is expanded into tiered search variants (Plan), fetched tier by
// tier with bounded parallelism, deduplicated, scored by an additive Scorer
// and either accepted against an evidence-dependent threshold or declined
// with a Reason. When a query carries a reference identity, container
// candidates are additionally validated by sampling their members.
//
// Every call site supplies a Profile: search fields, keyword tables, weights
// and policies. The engine itself holds no per-call state and never caches;
// caching belongs to the call-site services.
package resolve

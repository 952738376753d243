// Package resolvecache persists resolutions and rankings in SQLite so repeated
// lookups skip the catalog.
//
// Rows are keyed by the canonical form of resolve.CacheKey and carry an
// explicit expiry: accepted resolutions live longest, rejections and
// rankings expire quickly so catalog changes surface. Expired rows are
// ignored on read and removed by Prune, which also compacts the database
// under a file lock. The cache belongs to the call-site services; the
// resolution engine never touches it.
package resolvecache

/*
Package keylock serializes work per key.

Local callers are ordered with reference-counted per-key locks that are garbage
collected once the last holder leaves. An optional ports.DistributedLocker extends
the exclusion across processes sharing the same backend.
*/
package keylock

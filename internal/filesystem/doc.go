/*
Package filesystem wraps the filesystem operations the thumbnail cache
depends on.

# Retries

Stat and Open are retried with exponential backoff when they fail with ESTALE
(stale NFS file handle), which happens when media or cache volumes are NFS
mounts that change underneath the server. Any other error is returned on the
first attempt.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

# Directories and writes

EnsureDir creates a directory tree and treats a concurrently created
directory as success. WriteFileAtomic writes to a temporary file in the
destination directory and renames it into place, so readers never observe
a partially written derivative; concurrent writers to the same path leave
the last complete file.

# Metrics

Operations report to an Observer (see SetObserver), labelled with the volume
name resolved by a VolumeResolver. With no observer set, nothing is recorded.
*/
package filesystem

// Package file provides a file-based implementation of the ConfigStore
// port, persisting configuration as TOML in the fixit config directory.
package file

// Package version holds the server's version.
package version

// VERSION holds the server's version
const VERSION = "1.0.0"

// Package main provides the entry point for the bmlinks CLI.
//
// bmlinks keeps a bookmark collection and checks whether its links still
// resolve, following redirects and recording the verdict on each bookmark.
//
// Usage:
//
//	bmlinks check [--folder NAME] [--failed]
//	bmlinks probe <url|query>
//	bmlinks import <file.html>
//	bmlinks export [path]
//
// See --help for all available options.
package main

func main() {
	Execute()
}

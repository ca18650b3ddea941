//go:build !mempooldebug

package pool

const debugChecks = false

func assertTag(Tag) {}

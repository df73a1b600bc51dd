//go:build !unix

package rsetup

func kernelRelease() string { return "" }

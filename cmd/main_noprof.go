//go:build !pprof

package main

func initProfiling() {}

// Package vfile turns paths, file URLs and descriptions into virtual files
// and reads or writes their content through a pluggable backend.Filesystem.
//
// Every I/O operation comes in three forms: ReadSync/WriteSync block and
// return the file, Read/Write return a Future, and ReadCallback/WriteCallback
// deliver the result to a Callback. All three share one implementation, so
// they resolve paths and report errors identically.
package vfile

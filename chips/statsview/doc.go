// Package statsview serves live runtime statistics over HTTP while a board
// runs. It is only functional when built with the statsview tag:
//
//	go build -tags statsview ./cmd/chips
//
// By default the charts are served at localhost:12600/debug/statsview and
// the standard pprof handlers at localhost:12600/debug/pprof/. Config moves
// the server elsewhere.
package statsview

// Synfs runs the examples/synfs synthetic 9P2000 file server, useful as
// a manual test target for cmd/ninep9p.
//
// It serves a root directory containing a single read-only file called
// "hello" whose contents are "hello, world\n".
//
// Usage:
//
//	synfs [-a addr]
//
// The default listen address is :5640 (port 5640 on all interfaces).
// Connect with ninep9p:
//
//	ninep9p -a localhost:5640 cat hello
package main

import (
	"flag"
	"log"

	"github.com/nineproto/ninep/examples/synfs"
)

var addr = flag.String("a", ":5640", "listen address")

func main() {
	flag.Parse()
	log.Printf("synfs: listening on %s", *addr)
	log.Fatal(synfs.ListenAndServe("tcp", *addr))
}

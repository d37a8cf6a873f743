// Command ninep9p is a small command-line client for the 9P protocol,
// demonstrating ninep.StreamTransport over a real net.Conn.
//
// Usage:
//
//	ninep9p [-net tcp|unix] [-a addr] [-msize n] [-uname name] <op> <path> [...]
//
// Supported ops:
//
//	ls <path>         list a directory's entries
//	cat <path>        read and print a file's contents
//	stat <path>       print mode, size, nlink, uid and gid (9P2000.L servers only)
//
// Example, against cmd/synfs:
//
//	ninep9p -a localhost:5640 cat hello
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/nineproto/ninep"
)

var (
	network = flag.String("net", "tcp", "network to dial: tcp or unix")
	addr    = flag.String("a", "localhost:5640", "address to dial")
	msize   = flag.Uint("msize", uint(ninep.DefaultMsize), "proposed msize")
	uname   = flag.String("uname", "none", "attach username")
	mtag    = flag.String("tag", "", "mount tag (aname) to attach to")
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: ninep9p [flags] <ls|cat|stat> <path>\n")
		os.Exit(2)
	}
	op, path := args[0], args[1]

	conn, err := net.Dial(*network, *addr)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	s := ninep.New(ninep.NewStreamTransport(conn), *mtag,
		ninep.WithMsize(uint32(*msize)),
		ninep.WithUname(*uname),
	)
	if err := s.Negotiate(); err != nil {
		log.Fatalf("negotiate: %v", err)
	}
	log.Printf("negotiated %s, msize=%d", s.Dialect(), s.Msize())

	switch op {
	case "ls":
		runLs(s, path)
	case "cat":
		runCat(s, path)
	case "stat":
		runStat(s, path)
	default:
		fmt.Fprintf(os.Stderr, "unknown op %q\n", op)
		os.Exit(2)
	}
}

func runLs(s *ninep.Session, path string) {
	names, err := s.ListDir(path)
	if err != nil {
		log.Fatalf("ls %s: %v", path, err)
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func runCat(s *ninep.Session, path string) {
	fid, err := s.OpenPathWithFlags(path, ninep.OREAD, ninep.DotlRDOnly)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer s.CloseFid(fid)

	var offset uint64
	for {
		data, err := s.ReadFid(fid, offset, 0)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		if len(data) == 0 {
			return
		}
		if _, err := os.Stdout.Write(data); err != nil {
			log.Fatalf("write stdout: %v", err)
		}
		offset += uint64(len(data))
	}
}

func runStat(s *ninep.Session, path string) {
	if !s.Dialect().IsDotL() {
		log.Fatalf("stat requires a 9P2000.L server, negotiated %s", s.Dialect())
	}
	attr, err := s.GetAttr(path)
	if err != nil {
		log.Fatalf("getattr %s: %v", path, err)
	}
	fmt.Printf("mode=%#o size=%d nlink=%d uid=%d gid=%d\n",
		attr.Mode, attr.Size, attr.Nlink, attr.Uid, attr.Gid)
}

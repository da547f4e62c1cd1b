package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/hailam/chessrules/internal/shell"
	"github.com/hailam/chessrules/internal/storage"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	dbDir      = flag.String("db", "", "database directory (default: user data dir)")
	noDB       = flag.Bool("nodb", false, "run without a database")
	fen        = flag.String("fen", "", "starting position")
	commands   = flag.String("c", "", "semicolon separated commands to run instead of reading stdin")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Print("could not create CPU profile: ", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Print("could not start CPU profile: ", err)
			return 1
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	store, err := openStore()
	if err != nil {
		log.Printf("Warning: database not opened: %v (perft results will not be cached)", err)
	}
	if store != nil {
		defer store.Close()
	}

	sh := shell.New(os.Stdout, store)
	if *fen != "" {
		if err := sh.SetPosition(*fen); err != nil {
			log.Print(err)
			return 2
		}
	}

	if *commands != "" {
		for _, cmd := range strings.Split(*commands, ";") {
			if !sh.Execute(cmd) {
				break
			}
		}
		return 0
	}

	if err := sh.Run(os.Stdin); err != nil {
		log.Print(err)
		return 1
	}
	return 0
}

func openStore() (*storage.Storage, error) {
	switch {
	case *noDB:
		return nil, nil
	case *dbDir != "":
		return storage.Open(*dbDir)
	default:
		return storage.NewStorage()
	}
}

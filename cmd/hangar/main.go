// Command hangar manages saved ship schemes outside the game.
//
//	hangar [-db hangar.db] list
//	hangar [-db hangar.db] import <name> <file.yaml|file.msgpack>
//	hangar [-db hangar.db] export <name> <file.yaml|file.msgpack>
//	hangar [-db hangar.db] delete <name>
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/milk9111/modular/hangar"
	"github.com/milk9111/modular/logging"
	"github.com/milk9111/modular/prefabs"
)

var errUsage = errors.New("usage: hangar [-db path] list | import <name> <file> | export <name> <file> | delete <name>")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("hangar", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dbPath := fs.String("db", "hangar.db", "hangar database")
	level := fs.String("log", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	h, err := hangar.Open(*dbPath, logging.New(os.Stderr, *level))
	if err != nil {
		return err
	}
	defer h.Close()

	switch cmd := rest[0]; {
	case cmd == "list" && len(rest) == 1:
		return list(h, out)
	case cmd == "import" && len(rest) == 3:
		s, err := prefabs.LoadScheme(rest[2])
		if err != nil {
			return err
		}
		if err := h.Save(rest[1], s); err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %s (%d modules)\n", rest[1], s.Count())
		return nil
	case cmd == "export" && len(rest) == 3:
		s, err := h.Load(rest[1])
		if err != nil {
			return err
		}
		if err := prefabs.SaveScheme(rest[2], s); err != nil {
			return err
		}
		fmt.Fprintf(out, "exported %s to %s\n", rest[1], rest[2])
		return nil
	case cmd == "delete" && len(rest) == 2:
		return h.Delete(rest[1])
	}
	return errUsage
}

func list(h *hangar.Hangar, out io.Writer) error {
	recs, err := h.List()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODULES\tUPDATED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", r.Name, r.Modules, r.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

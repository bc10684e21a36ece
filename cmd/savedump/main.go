package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"gamesave/internal/domain/archive"
	"gamesave/internal/domain/savegame"
)

func main() {
	pdfOut := pflag.StringP("pdf", "p", "", "also write the report to this PDF file")
	version := pflag.Uint32("version", savegame.BulkVersion, "expected save format version")
	metaOnly := pflag.BoolP("meta", "m", false, "only print the listing metadata")
	debug := pflag.BoolP("verbose", "v", false, "log archive decoding")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: savedump [flags] file.sav\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	log := zap.NewNop().Sugar()
	if *debug {
		l, err := zap.NewDevelopment()
		if err == nil {
			log = l.Sugar()
		}
	}

	rep, err := buildReport(pflag.Arg(0), *version, !*metaOnly, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "savedump:", err)
		os.Exit(1)
	}
	if err := rep.writeText(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "savedump:", err)
		os.Exit(1)
	}
	if *pdfOut != "" {
		if err := rep.writePDF(*pdfOut); err != nil {
			fmt.Fprintln(os.Stderr, "savedump: pdf:", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "PDF written:", *pdfOut)
	}
}

func buildReport(path string, version uint32, decode bool, log *zap.SugaredLogger) (*report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rep := &report{Path: path}
	rep.Valid, rep.Meta = savegame.Validate(f)

	bulk, err := savegame.ReadBulk(f, version)
	if err != nil {
		return nil, err
	}
	rep.Header = bulk.Header
	if !decode {
		return rep, nil
	}

	archive.Deobfuscate(bulk.Payload)
	rep.Contents, err = savegame.DecodePayload(savegame.Registry(), bulk.Payload, log)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

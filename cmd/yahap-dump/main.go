// yahap-dump tokenizes HTML files and prints one line per chunk. It is a
// debugging aid and a convenient way to eyeball what the tokenizer makes of
// a page.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/shmutalov/yahap"
)

const version = "1.0.0"

type cmdopts struct {
	Encoding string `long:"encoding" default:"utf-8" description:"charset label used to decode text"`
	Raw      bool   `long:"raw" description:"print each chunk's raw source span as well"`
	Hash     bool   `long:"hash" description:"store attributes in hash mode"`
	Quiet    bool   `short:"q" long:"quiet" description:"scan without printing, for timing runs"`
	Version  bool   `long:"version"`
}

func main() {
	os.Exit(_main())
}

func showUsage() {
	fmt.Printf(`Usage : yahap-dump [options] HTMLfiles ...
	Tokenize the HTML files (or stdin) and print the resulting chunks
	--version : display the version of the tokenizer
`)
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 1
	}

	if opts.Version {
		fmt.Printf("yahap-dump: using yahap version %s\n", version)
		return 0
	}

	p := yahap.NewParserOptions(opts.Hash)
	if err := p.SetEncoding(opts.Encoding); err != nil {
		logrus.WithError(err).Error("invalid encoding label")
		return 1
	}

	if len(args) == 0 {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			logrus.WithError(err).Error("reading stdin")
			return 1
		}
		dump(p, buf, &opts)
		return 0
	}

	for _, name := range args {
		buf, err := os.ReadFile(name)
		if err != nil {
			logrus.WithError(errors.Wrapf(err, "reading %s", name)).Error("skipping input")
			return 1
		}
		dump(p, buf, &opts)
	}
	return 0
}

func dump(p *yahap.Parser, buf []byte, opts *cmdopts) {
	p.Init(buf)
	for {
		c := p.ParseNext()
		if c == nil {
			return
		}
		if opts.Quiet {
			continue
		}
		fmt.Printf("%-8s %7d %6d", c.Type, c.Offset, c.Length)
		if c.Tag != "" {
			fmt.Printf(" <%s>", c.Tag)
		}
		if c.HashMode() {
			for name, value := range c.Params() {
				fmt.Printf(" %s=%q", name, value)
			}
		} else {
			for i := 0; i < c.ParamsCount(); i++ {
				name, value, _ := c.Param(i)
				fmt.Printf(" %s=%q", name, value)
			}
		}
		if c.HTML != "" {
			fmt.Printf(" %q", c.HTML)
		}
		if opts.Raw {
			fmt.Printf(" raw=%q", p.Raw(c))
		}
		fmt.Println()
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/Neumenon/confarg/confarg"
)

func newRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confarg",
		Short: "Inspect and transform element configuration strings",
		Long: dedent.Dedent(`
			confarg works on the textual configuration strings that element
			declarations carry: comma-separated argument lists with C-style
			comments, shell-style quoting and backslash escapes.

			Each subcommand reads its input from a file argument or from
			stdin and writes the transformed text to stdout.
		`),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(newCmdUncomment(out))
	cmd.AddCommand(newCmdSplit(out))
	cmd.AddCommand(newCmdQuote(out))
	cmd.AddCommand(newCmdUnquote(out))
	cmd.AddCommand(newCmdCheck(out))
	return cmd
}

// readInput returns the whole input: the named file, or stdin for "" or "-".
func readInput(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", errors.Wrapf(err, "reading %s", args[0])
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.Wrap(err, "reading stdin")
	}
	return string(data), nil
}

func newCmdUncomment(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "uncomment [file]",
		Short: "Strip comments from a configuration string",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, confarg.Uncomment(in))
			return nil
		},
	}
}

func newCmdSplit(out io.Writer) *cobra.Command {
	var spaces bool
	var join bool

	cmd := &cobra.Command{
		Use:   "split [file]",
		Short: "Split a configuration string into its arguments",
		Long: dedent.Dedent(`
			Splits the input on top-level commas (or on whitespace with
			--spaces) and prints one argument per line. Quoted commas and
			comments never split; a trailing comma yields an empty argument.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args)
			if err != nil {
				return err
			}

			var parts []string
			if spaces {
				parts = confarg.SplitSpaces(in)
			} else {
				parts = confarg.SplitCommas(in)
			}
			klog.V(2).Infof("split input into %d argument(s)", len(parts))

			if join {
				if spaces {
					fmt.Fprintln(out, confarg.JoinSpaces(parts))
				} else {
					fmt.Fprintln(out, confarg.JoinCommas(parts))
				}
				return nil
			}
			for _, p := range parts {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&spaces, "spaces", false, "split on whitespace instead of commas")
	cmd.Flags().BoolVar(&join, "join", false, "rejoin the arguments onto one line")
	return cmd
}

func newCmdQuote(out io.Writer) *cobra.Command {
	var multiline bool

	cmd := &cobra.Command{
		Use:   "quote [file]",
		Short: "Quote raw text as a configuration string",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args)
			if err != nil {
				return err
			}
			// a single trailing newline is an artifact of line-based input
			in = strings.TrimSuffix(in, "\n")

			if multiline {
				fmt.Fprintln(out, confarg.QuoteMultiline(in))
			} else {
				fmt.Fprintln(out, confarg.Quote(in))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&multiline, "multiline", false, "keep newlines unescaped inside the quotes")
	return cmd
}

func newCmdUnquote(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "unquote [file]",
		Short: "Unquote a configuration string to raw text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args)
			if err != nil {
				return err
			}
			in = strings.TrimSuffix(in, "\n")
			fmt.Fprintln(out, confarg.Unquote(in))
			return nil
		},
	}
}

func newCmdCheck(out io.Writer) *cobra.Command {
	var fracDigits int
	var fracBits int

	cmd := &cobra.Command{
		Use:   "check TYPE VALUE...",
		Short: "Parse values as a registered argument type",
		Long: dedent.Dedent(`
			Parses each VALUE as the named argument type and prints the
			stored result, or the diagnostics a failing parse produced.
			Fixed-point types take --frac-digits (real10, u_real10) or
			--frac-bits (real2, u_real2).

			Exits nonzero if any value fails to parse.
		`),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, values := args[0], args[1:]
			nbad := 0
			for _, v := range values {
				if err := checkOne(out, typ, v, fracDigits, fracBits); err != nil {
					nbad++
				}
			}
			if nbad > 0 {
				return errors.Errorf("%d of %d value(s) failed to parse", nbad, len(values))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&fracDigits, "frac-digits", 2, "fractional digits for decimal fixed-point types")
	cmd.Flags().IntVar(&fracBits, "frac-bits", 16, "fractional bits for binary fixed-point types")
	return cmd
}

// checkOne parses one value through the public matcher so the output shows
// exactly what an element would have received.
func checkOne(out io.Writer, typ, value string, fracDigits, fracBits int) error {
	cx := confarg.NewContext()
	errh := &confarg.CollectingHandler{}

	slot, render, err := slotForType(typ, fracDigits, fracBits)
	if err != nil {
		return err
	}

	_, perr := confarg.ParseArgs(cx, errh, []string{value}, slot)
	if perr != nil {
		for _, msg := range errh.Errors() {
			fmt.Fprintf(out, "%s: FAIL: %s\n", value, strings.ReplaceAll(msg, "\n", " "))
		}
		if errh.NErrors() == 0 {
			fmt.Fprintf(out, "%s: FAIL: %v\n", value, perr)
		}
		return perr
	}

	fmt.Fprintf(out, "%s: OK: %s\n", value, render())
	klog.V(2).Infof("parsed %q as %s", value, typ)
	return nil
}

// slotForType builds a one-slot signature for the type plus a formatter for
// the destination it will fill.
func slotForType(typ string, fracDigits, fracBits int) (confarg.Slot, func() string, error) {
	switch typ {

	case confarg.TypeBool:
		var b bool
		return confarg.Arg(typ, "value", &b),
			func() string { return confarg.UnparseBool(b) }, nil

	case confarg.TypeByte:
		var u uint8
		return confarg.Arg(typ, "value", &u),
			func() string { return fmt.Sprintf("%d", u) }, nil

	case confarg.TypeShort:
		var i int16
		return confarg.Arg(typ, "value", &i),
			func() string { return fmt.Sprintf("%d", i) }, nil

	case confarg.TypeUShort:
		var u uint16
		return confarg.Arg(typ, "value", &u),
			func() string { return fmt.Sprintf("%d", u) }, nil

	case confarg.TypeInt:
		var i int32
		return confarg.Arg(typ, "value", &i),
			func() string { return fmt.Sprintf("%d", i) }, nil

	case confarg.TypeUnsigned:
		var u uint32
		return confarg.Arg(typ, "value", &u),
			func() string { return confarg.UnparseUnsigned(uint64(u), 10, false) }, nil

	case confarg.TypeReal10, confarg.TypeUReal10:
		var i int32
		return confarg.ArgExtra(typ, "value", fracDigits, &i),
			func() string { return confarg.UnparseSignedReal10(i, fracDigits) }, nil

	case confarg.TypeReal2:
		var i int32
		return confarg.ArgExtra(typ, "value", fracBits, &i),
			func() string { return confarg.UnparseSignedReal2(i, fracBits) }, nil

	case confarg.TypeUReal2:
		var u uint32
		return confarg.ArgExtra(typ, "value", fracBits, &u),
			func() string { return confarg.UnparseReal2(u, fracBits) }, nil

	case confarg.TypeMilliseconds:
		var i int32
		return confarg.Arg(typ, "value", &i),
			func() string { return fmt.Sprintf("%d ms", i) }, nil

	case confarg.TypeTimeval:
		var tv confarg.Timeval
		return confarg.Arg(typ, "value", &tv),
			func() string { return fmt.Sprintf("%d.%06d", tv.Sec, tv.Usec) }, nil

	case confarg.TypeString, confarg.TypeWord, confarg.TypeArgument:
		var s string
		return confarg.Arg(typ, "value", &s),
			func() string { return confarg.Quote(s) }, nil

	case confarg.TypeIP4:
		var a confarg.IP4Addr
		return confarg.Arg(typ, "value", &a),
			func() string { return a.String() }, nil

	case confarg.TypeIP4Prefix, confarg.TypeIP4OrPrefix:
		var a, m confarg.IP4Addr
		return confarg.Arg(typ, "value", &a, &m),
			func() string { return a.String() + "/" + m.String() }, nil

	case confarg.TypeIP6:
		var a confarg.IP6Addr
		return confarg.Arg(typ, "value", &a),
			func() string { return a.String() }, nil

	case confarg.TypeIP6Prefix, confarg.TypeIP6OrPrefix:
		var a, m confarg.IP6Addr
		return confarg.Arg(typ, "value", &a, &m),
			func() string { return a.String() + "/" + m.String() }, nil

	case confarg.TypeEther:
		var a confarg.EtherAddr
		return confarg.Arg(typ, "value", &a),
			func() string { return a.String() }, nil

	case confarg.TypeIPSet:
		var set confarg.IPSet
		return confarg.Arg(typ, "value", &set),
			func() string {
				addrs := make([]string, 0, len(set))
				for a := range set {
					addrs = append(addrs, a.String())
				}
				sort.Strings(addrs)
				return fmt.Sprintf("%d address(es): %s", len(set), strings.Join(addrs, " "))
			}, nil

	default:
		return confarg.Slot{}, nil, errors.Errorf("unsupported type %q", typ)
	}
}

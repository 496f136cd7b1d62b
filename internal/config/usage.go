package config

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/agbru/picalc/internal/ui"
)

// setCustomUsage installs a colored usage function on fs.
func setCustomUsage(fs *pflag.FlagSet, out io.Writer) {
	fs.Usage = func() {
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}

		fmt.Fprintf(out, "\n%sπ Calculator%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Decimal digits of π by the Chudnovsky series with binary splitting.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags] [digits]\n\n", t.Warning, t.Reset, fs.Name())
		fmt.Fprintf(out, "%sDigits:%s\n  12345, 1K, 10M, 2G, 1T (×10^3..10^12), 1e6, 3E7\n\n%sFlags:%s\n", t.Warning, t.Reset, t.Warning, t.Reset)

		fs.VisitAll(func(f *pflag.Flag) {
			name, usage := pflag.UnquoteUsage(f)
			flagSig := "--" + f.Name
			if f.Shorthand != "" {
				flagSig = "-" + f.Shorthand + ", " + flagSig
			} else {
				flagSig = "    " + flagSig
			}
			if name != "" {
				flagSig += " " + name
			}

			fmt.Fprintf(out, "  %s%-32s%s %s", t.Primary, flagSig, t.Reset, usage)
			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})
		fmt.Fprintf(out, "\nEvery flag can also be set as PICALC_<FLAG> (e.g. PICALC_MARGIN_BITS=512).\n\n")
	}
}

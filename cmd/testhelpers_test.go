package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const catalogCSV = `title,description,listed_in,date_added,duration,rating
A,space adventure crew ship,"Dramas, Sci-Fi",2021-01-05,90 min,PG
B,space crew survival ship,Dramas,2021-03-01,100 min,
C,cooking competition chefs,Reality TV,2020-06-01,2 Seasons,TV-G
D,chefs cooking baking,"Reality TV, Dramas",2020-07-01,45 min,TV-G
E,space station crew,Sci-Fi,2019-02-02,120 min,PG
`

const viewingCSV = `Title,Date
Show: Ep1,2024-01-01 21:00
Show: Ep2,2024-01-01 22:00
Movie,2024-01-05 20:00
Show: Ep3,2024-01-06 21:00
`

// resetFlags restores every flag to its default so bound variables do not
// leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command and returns its output and error.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// tempHome isolates config and runs under a fresh HOME.
func tempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFixture(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

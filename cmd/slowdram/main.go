// The slowdram command runs simulation benches of the DDR3 controller system.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "slowdram",
	Short: "slowdram runs simulation benches of the DDR3 controller system.",
	Long: `slowdram assembles the DDR3 memory controller, its register-bus ` +
		`bridge, and a behavioral memory device into a simulated system and ` +
		`runs benches against it.`,
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

package theme

import (
	"fmt"
)

// Banner returns the shelter-desk themed banner.
func Banner() string {
	const cyan = "\033[36m"
	const magenta = "\033[35m"
	const yellow = "\033[33m"
	const reset = "\033[0m"

	art := "" +
		"   /\\_/\\    " + magenta + "PAWLIFT" + reset + "    /^ ^\\\n" +
		cyan + "  ( o.o )  engagement  / 0 0 \\\n" + reset +
		cyan + "   > ^ <   predictor   V\\ Y /V\n" + reset +
		yellow + "  ─────────────────────────────\n" + reset +
		"   score, contrast, and rewrite adoption posts\n"

	paws := magenta + "      🐾      🐾      🐾\n" + reset
	return art + paws
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}

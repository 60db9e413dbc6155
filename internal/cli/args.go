package cli

import (
	"fmt"
	"os"
	"strings"
)

// osExit is a variable that can be mocked in tests
var osExit = os.Exit

const helpText = `mgquery - run openCypher queries against Memgraph

Usage:
  mgquery [OPTIONS] <query>

Options:
  -h, --help                 Show this help message
  -v, --version              Show version information
  --uri <URI>                Bolt connection URI (overrides env var)
  --username <USERNAME>      Database username (overrides env var)
  --password <PASSWORD>      Database password (overrides env var)
  --database <DATABASE>      Database name (overrides env var)

Environment Variables:
  MG_URI          Bolt connection URI (default: bolt://localhost:7687)
  MG_USERNAME     Database username (default: none, Memgraph runs without auth)
  MG_PASSWORD     Database password
  MG_DATABASE     Database name
  MG_LOG_LEVEL    Log level: debug, info, warn, error (default: info)
  MG_LOG_FORMAT   Log format: text, json (default: text)

Examples:
  # Using environment variables
  MG_URI=bolt://localhost:7687 mgquery "MATCH (n) RETURN n LIMIT 5"

  # Using CLI flags (takes precedence over environment variables)
  mgquery --uri bolt://localhost:7687 "MATCH (n) RETURN count(n) AS n"
`

// HandleArgs processes command-line arguments for version and help flags.
// It exits the program after displaying the requested information.
// If unknown flags are encountered, it prints an error message and exits.
// Known configuration flags are skipped so the flag package can parse them
// later in main.
func HandleArgs(version string) {
	if len(os.Args) <= 1 {
		return
	}

	flags := make(map[string]bool)
	var err error
	i := 1 // os.Args[0] is the program name, not a flag

	for i < len(os.Args) {
		arg := os.Args[i]
		switch arg {
		case "-h", "--help":
			flags["help"] = true
			i++
		case "-v", "--version":
			flags["version"] = true
			i++
		// Allow configuration flags to be parsed by the flag package
		case "--uri", "--username", "--password", "--database":
			// Check if there's a value following the flag
			if i+1 >= len(os.Args) {
				err = fmt.Errorf("%s requires a value", arg)
				break
			}
			// Check if next argument is another flag (starts with --)
			nextArg := os.Args[i+1]
			if strings.HasPrefix(nextArg, "--") {
				err = fmt.Errorf("%s requires a value (got flag %s instead)", arg, nextArg)
				break
			}
			// Safe to skip flag and value - let flag package handle them
			i += 2
		default:
			if arg == "--" {
				// Stop processing our flags, let flag package handle the rest
				i = len(os.Args)
				break
			}
			if strings.HasPrefix(arg, "-") {
				err = fmt.Errorf("unknown flag: %s", arg)
				break
			}
			// Positional argument: the query text.
			i++
		}
		// Exit loop if an error occurred
		if err != nil {
			break
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}

	if flags["help"] {
		fmt.Print(helpText)
		osExit(0)
	}

	if flags["version"] {
		fmt.Printf("mgquery version: %s\n", version)
		osExit(0)
	}
}

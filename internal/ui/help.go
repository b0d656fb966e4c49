package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pleimann/matrixpush/internal/utils"
)

type example struct {
	cmd  string
	desc string
}

// PrintUsage displays the styled help/usage text
func PrintUsage(version string) {
	name := utils.ExecutableName()

	banner := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		Render(name)

	versionTag := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render("v" + version)

	fmt.Printf("%s %s\n", banner, versionTag)
	fmt.Println(Muted("Send images, animations and text to an LED matrix display"))
	fmt.Println()

	printSection("Usage", []string{
		name + " [flags]                      Interactive session",
		name + " size                         Print the display size",
		name + " image [options] FILE...      Send still images or one GIF",
		name + " text [options] [TEXT]        Send text",
		name + " watch [options] FILE         Re-send FILE whenever it changes",
		name + " init-config [options]        Write or update the config file",
		name + " help                         Show this help message",
	})

	printSection("Flags", []string{
		"-c, --config string   Path to configuration file (default \"matrixpush.yaml\")",
		"-v, --verbose         Enable verbose logging",
		"-V, --version         Print version and exit",
	})

	printCommandSection()

	printExamples([]example{
		{name, "Interactive session with matrixpush.yaml"},
		{name + " size --config lab.yaml", "Ask another display for its size"},
		{name + " image cat.png", "Send one image"},
		{name + " image --delay 500 a.png b.png c.png", "Cycle three images every 500 ms"},
		{name + " image --preview spinner.gif", "Preview a GIF, then send it"},
		{name + " text --color '#00ff00' --mode scroll Hallo", "Scroll green text"},
	})
}

func printSection(title string, items []string) {
	fmt.Println(Bold(title))
	for _, item := range items {
		fmt.Printf("  %s\n", item)
	}
	fmt.Println()
}

func printCommandSection() {
	fmt.Println(Bold("Commands"))

	cmdStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)

	commands := []struct {
		name string
		desc string
	}{
		{"image", "Send up to the configured number of still images, or a single GIF"},
		{"text", "Send text in static or scroll mode"},
		{"watch", "Send an image again every time the file is saved"},
		{"init-config", "Write a default config file, or update the server url of an existing one"},
	}

	for _, c := range commands {
		fmt.Printf("  %s\n", cmdStyle.Render(c.name))
		fmt.Printf("      %s\n", c.desc)
		fmt.Printf("      Run %s for more information\n", Code(utils.ExecutableName()+" "+c.name+" --help"))
		fmt.Println()
	}
}

func printExamples(examples []example) {
	fmt.Println(Bold("Examples"))

	cmdStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary)

	maxLen := 0
	for _, ex := range examples {
		if len(ex.cmd) > maxLen {
			maxLen = len(ex.cmd)
		}
	}

	for _, ex := range examples {
		padding := strings.Repeat(" ", maxLen-len(ex.cmd)+2)
		fmt.Printf("  %s%s%s\n", cmdStyle.Render(ex.cmd), padding, Muted(ex.desc))
	}
	fmt.Println()
}

func printOptions(options [][2]string) {
	fmt.Println(Bold("Options"))

	maxLen := 0
	for _, o := range options {
		if len(o[0]) > maxLen {
			maxLen = len(o[0])
		}
	}
	for _, o := range options {
		padding := strings.Repeat(" ", maxLen-len(o[0])+4)
		fmt.Printf("  %s%s%s\n", SubtitleStyle.Render(o[0]), padding, o[1])
	}
	fmt.Println()
}

var configOption = [2]string{"-c, --config string", "Path to configuration file (default \"matrixpush.yaml\")"}

// PrintImageUsage displays the styled help text for the image subcommand
func PrintImageUsage(maxImages int) {
	name := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), name+" image [options] FILE...")
	fmt.Println()
	fmt.Println("Send still images or one animated GIF to the display.")
	fmt.Println()
	fmt.Println(Muted(fmt.Sprintf("One image is shown as is. Two to %d images are shown in turn with one", maxImages)))
	fmt.Println(Muted("shared delay. A GIF keeps its own frame delays and cannot be mixed with"))
	fmt.Println(Muted("other files."))
	fmt.Println()

	printOptions([][2]string{
		{"-d, --delay int", "Delay between images in ms (only with several images)"},
		{"-p, --preview", "Show the encoded images and ask before sending"},
		configOption,
	})

	printExamples([]example{
		{name + " image logo.png", "Single image"},
		{name + " image --delay 750 a.png b.png", "Two images, 750 ms each"},
		{name + " image nyan.gif", "Animated GIF"},
	})
}

// PrintTextUsage displays the styled help text for the text subcommand
func PrintTextUsage() {
	name := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), name+" text [options] [TEXT]")
	fmt.Println()
	fmt.Println("Send text to the display.")
	fmt.Println()
	fmt.Println(Muted("Static text is wrapped to the display width, scrolling text stays on one"))
	fmt.Println(Muted("line. Missing fields are asked for when running in a terminal."))
	fmt.Println()

	printOptions([][2]string{
		{"--color string", "Text color as #RRGGBB, black is not allowed (default from config)"},
		{"-m, --mode string", "static or scroll"},
		{"-p, --preview", "Show the layout before sending"},
		configOption,
	})

	printExamples([]example{
		{name + " text --mode static 'Back in 5'", "Static text in the default color"},
		{name + " text --mode scroll --color '#ffaa00' Sale", "Scrolling orange text"},
		{name + " text", "Fill in the text form"},
	})
}

// PrintWatchUsage displays the styled help text for the watch subcommand
func PrintWatchUsage() {
	name := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), name+" watch [options] FILE")
	fmt.Println()
	fmt.Println("Send FILE now and again every time it changes, until interrupted.")
	fmt.Println()

	printOptions([][2]string{
		{"-p, --preview", "Show every encoded image in the terminal"},
		configOption,
	})

	printExamples([]example{
		{name + " watch dashboard.png", "Mirror a rendered dashboard"},
	})
}

// PrintInitConfigUsage displays the styled help text for the init-config subcommand
func PrintInitConfigUsage() {
	name := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), name+" init-config [options]")
	fmt.Println()
	fmt.Println("Create a configuration file with default values.")
	fmt.Println()
	fmt.Println(Muted("If the file exists only its server url is replaced, comments are kept."))
	fmt.Println()

	printOptions([][2]string{
		{"-u, --url string", "Display server address (default \"http://matrix.local\")"},
		configOption,
	})

	printExamples([]example{
		{name + " init-config", "Write matrixpush.yaml"},
		{name + " init-config --url http://10.0.0.7", "Point the config at another display"},
	})
}

// PrintVersion displays the styled version information
func PrintVersion(version string) {
	banner := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		Render(utils.ExecutableName())

	versionTag := lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Render("v" + version)

	fmt.Printf("%s %s\n", banner, versionTag)
}

// PrintError displays a styled error message
func PrintError(message string) {
	fmt.Println(Error(message))
}

// PrintFatalError displays a styled fatal error message with context
func PrintFatalError(context, message string) {
	fmt.Println()
	fmt.Println(Error(context))
	fmt.Printf("  %s\n", Muted(message))
	fmt.Println()
}

package util

import (
	"bufio"
	"strconv"
	"strings"
)

// SplitLines splits raw command output into lines, dropping the trailing
// newline but keeping interior empty lines.
func SplitLines(s string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

// SplitNamePID splits a "name.pid" process cell. The PID is the last
// dot-separated segment when it is all digits; otherwise the whole cell is
// the name and the PID is -1. Dots inside names ("com.apple.netbiosd.123")
// stay with the name.
func SplitNamePID(cell string) (string, int) {
	i := strings.LastIndex(cell, ".")
	if i < 0 || i == len(cell)-1 {
		return cell, -1
	}
	pid, err := strconv.Atoi(cell[i+1:])
	if err != nil || pid < 0 {
		return cell, -1
	}
	return cell[:i], pid
}

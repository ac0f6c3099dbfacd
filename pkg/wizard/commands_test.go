package wizard

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDestructive(t *testing.T) {
	tests := []struct {
		cmd  string
		want bool
	}{
		{"rm -rf /", true},
		{"sudo rm -rf /*", true},
		{"rm -rf *", true},
		{"rm -r -f ~", true},
		{"mkfs.ext4 /dev/mmcblk0p1", true},
		{"sudo dd if=image.img of=/dev/sdb bs=4M", true},
		{":(){ :|:& };:", true},
		{"chmod -R 777 /", true},
		{"rm -rf build/", false},
		{"rm -rf /tmp/build", false},
		{"dd if=/dev/zero of=swapfile bs=1M count=64", false},
		{"chmod 755 blink.py", false},
		{"sudo apt install -y python3-libgpiod", false},
		{"config-pin P9_12 gpio", false},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDestructive(tt.cmd))
		})
	}
}

func TestParseCommands(t *testing.T) {
	var many []string
	for i := 0; i < 12; i++ {
		many = append(many, fmt.Sprintf(`{"cmd":"echo %d","explanation":"e"}`, i))
	}

	tests := []struct {
		name     string
		text     string
		wantCmds []string
		wantCode string
	}{
		{
			name:     "plain",
			text:     `{"commands":[{"cmd":"sudo apt update","explanation":"refresh"},{"cmd":"git clone https://git.beagleboard.org/x","explanation":"fetch"}],"code":"int main(){}"}`,
			wantCmds: []string{"sudo apt update", "git clone https://git.beagleboard.org/x"},
			wantCode: "int main(){}",
		},
		{
			name:     "capped at eight",
			text:     `{"commands":[` + strings.Join(many, ",") + `]}`,
			wantCmds: []string{"echo 0", "echo 1", "echo 2", "echo 3", "echo 4", "echo 5", "echo 6", "echo 7"},
		},
		{
			name:     "empty and destructive dropped",
			text:     `Here: {"commands":[{"cmd":"","explanation":"x"},{"cmd":"rm -rf /","explanation":"clean"},{"cmd":"ls /sys/class/gpio"},"junk"]}`,
			wantCmds: []string{"ls /sys/class/gpio"},
		},
		{
			name:     "unsafe task",
			text:     `{"commands":[],"code":""}`,
			wantCmds: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommands(tt.text)
			require.NoError(t, err)

			cmds := []string{}
			for _, c := range got.Commands {
				cmds = append(cmds, c.Cmd)
			}
			assert.Equal(t, tt.wantCmds, cmds)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestParseCommandsTruncates(t *testing.T) {
	long := strings.Repeat("a", 5000)
	got, err := ParseCommands(`{"commands":[{"cmd":"echo ` + long + `","explanation":"` + long + `"}],"code":"` + long + `"}`)

	require.NoError(t, err)
	assert.Len(t, got.Commands[0].Cmd, maxCmd)
	assert.Len(t, got.Commands[0].Explanation, maxExplanation)
	assert.Len(t, got.Code, maxCommandsCode)
}

func TestSuggestCommands(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantParse bool
	}{
		{"parsed", `{"commands":[{"cmd":"make","explanation":"build"}]}`, false},
		{"not json", "I would run make.", true},
		{"commands missing", `{"code":"x"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &stubCompleter{text: tt.text}
			s := newTestSynthesizer(&stubRetriever{}, completer)

			got, res, err := s.SuggestCommands(context.Background(), CommandRequest{TaskTitle: "Build", Detail: "Compile the firmware", Hardware: "BeagleBone AI-64"})

			assert.Equal(t, "openai", res.Provider)
			assert.Equal(t, 0.0, completer.opts.Temperature)
			assert.Equal(t, 800, completer.opts.MaxTokens)
			assert.Contains(t, completer.history[0].Content, "TASK TITLE: Build\nDETAIL: Compile the firmware\nHARDWARE: BeagleBone AI-64\nLANGUAGE: C\n")
			if tt.wantParse {
				assert.True(t, IsParseError(err))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "make", got.Commands[0].Cmd)
		})
	}
}

func TestSuggestCommandsValidation(t *testing.T) {
	completer := &stubCompleter{}
	s := newTestSynthesizer(&stubRetriever{}, completer)

	_, _, err := s.SuggestCommands(context.Background(), CommandRequest{Detail: "d"})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"taskTitle", "hardware"}, ve.Fields)
	assert.Zero(t, completer.calls)
}

package sh

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"runtime"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/sparki.go/pkg/bridge/mqtt"
	"github.com/robotalks/sparki.go/pkg/config"
	"github.com/robotalks/sparki.go/pkg/prompt"
	"github.com/robotalks/sparki.go/pkg/serial"
	"github.com/robotalks/sparki.go/pkg/sparki"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell   *ishell.Shell
	Config  *config.Config
	Session *sparki.Session
	Prompt  prompt.Provider
	// Candidates lists ports for connect without an argument.
	Candidates func() ([]string, error)
}

// CmdFunc is a command returning a value to print.
type CmdFunc func(s *Shell, args []string) (interface{}, error)

// OK is printed by commands without a result.
type OK struct{}

// String implements fmt.Stringer.
func (OK) String() string { return "OK" }

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	configFile string

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&StatusCmd,
		&HistoryCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&configFile, "config", configFile, "Config file, YAML, TOML or JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell on session.
func New(conf *config.Config, session *sparki.Session) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:   ishell.New(),
		Config:  conf,
		Session: session,
		Candidates: func() ([]string, error) {
			return serial.Candidates(runtime.GOOS)
		},
	}
	s.Prompt = prompt.Select(&prompt.Shell{Shell: s.Shell})
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn CmdFunc) CmdFunc {
	return func(s *Shell, args []string) (interface{}, error) {
		if !s.Session.IsConnected() {
			return nil, fmt.Errorf("not connected")
		}
		return fn(s, args)
	}
}

// Do adapts fn to an ishell command func which prints the result.
func Do(fn CmdFunc) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		res, err := fn(s, c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		out, err := s.Format(res)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(out)
	}
}

// Format renders a command result as text or JSON.
func (s *Shell) Format(res interface{}) (string, error) {
	if res == nil {
		res = OK{}
	}
	if s.OutputJSON {
		if _, ok := res.(OK); ok {
			res = map[string]bool{"ok": true}
		}
		out, err := json.Marshal(res)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	if str, ok := res.(fmt.Stringer); ok {
		return str.String(), nil
	}
	return fmt.Sprintf("%v", res), nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// SelectPort asks which candidate port to use when more than one exists.
func (s *Shell) SelectPort() (string, error) {
	ports, err := s.Candidates()
	if err != nil {
		return "", err
	}
	switch len(ports) {
	case 0:
		return "", sparki.ErrNotFound
	case 1:
		return ports[0], nil
	}
	if !s.Interactive {
		return "", fmt.Errorf("more than 1 port found in non-interactive mode: %s", strings.Join(ports, ", "))
	}
	index, err := s.Prompt.Choose("Which port to connect?", ports)
	if err != nil {
		return "", err
	}
	return ports[index], nil
}

// Connect connects a port, an empty port asks among the candidates.
func (s *Shell) Connect(port string) (sparki.Info, error) {
	var err error
	if port == "" {
		if port, err = s.SelectPort(); err != nil {
			return sparki.Info{}, err
		}
	}
	ok, err := s.Session.Connect(port)
	if err != nil {
		return sparki.Info{}, err
	}
	if !ok {
		return sparki.Info{}, fmt.Errorf("no response from Sparki on %s", port)
	}
	info := s.Session.Info()
	s.setPrompt(fmt.Sprintf("%s > ", info.Name))
	return info, nil
}

// Disconnect disconnects the robot.
func (s *Shell) Disconnect() error {
	err := s.Session.Disconnect()
	s.setPrompt(unconnectedPrompt)
	return err
}

func (s *Shell) setPrompt(p string) {
	if s.Shell != nil {
		s.Shell.SetPrompt(p)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Port)
		}
		if _, err := s.Connect(s.Config.Port); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Port, err)
		}
	}
	defer s.Session.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Status describes the session.
type Status struct {
	sparki.Info
	Library string  `json:"library"`
	Uptime  float64 `json:"uptime"`
	Sync    string  `json:"sync"`
}

// String implements fmt.Stringer.
func (st Status) String() string {
	if !st.Connected {
		return fmt.Sprintf("sparki.go %s, not connected", st.Library)
	}
	var features []string
	for _, f := range st.Profile.Features() {
		features = append(features, f.String())
	}
	return fmt.Sprintf("%s on %s, firmware %s (sparki.go %s)\nfeatures: %s\nuptime: %.1fs, link %s",
		st.Name, st.Port, st.Version, st.Library, strings.Join(features, ", "), st.Uptime, st.Sync)
}

var (
	// ConnectCmd connects a Sparki.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT]",
		Func: Do(func(s *Shell, args []string) (interface{}, error) {
			var port string
			if len(args) > 0 {
				port = args[0]
			}
			info, err := s.Connect(port)
			var connErr interface{ Guidance() string }
			if errors.As(err, &connErr) {
				return nil, fmt.Errorf("%v\n%s", err, connErr.Guidance())
			}
			return info, err
		}),
	}

	// DisconnectCmd disconnects the robot.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: Do(func(s *Shell, args []string) (interface{}, error) {
			return nil, s.Disconnect()
		}),
	}

	// StatusCmd prints versions and capabilities.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func:    Do(StatusFunc),
	}

	// HistoryCmd prints commands sent.
	HistoryCmd = ishell.Cmd{
		Name:    "history",
		Aliases: []string{"hist"},
		Help:    "[N]",
		Func:    Do(HistoryFunc),
	}
)

// StatusFunc implements the status command.
func StatusFunc(s *Shell, args []string) (interface{}, error) {
	lib, _ := s.Session.Versions()
	return Status{
		Info:    s.Session.Info(),
		Library: lib,
		Uptime:  s.Session.Uptime().Seconds(),
		Sync:    s.Session.SyncState().String(),
	}, nil
}

// History is the list of commands sent.
type History []string

// String implements fmt.Stringer.
func (h History) String() string {
	return strings.Join(h, "\n")
}

// HistoryFunc implements the history command, optionally the last N.
func HistoryFunc(s *Shell, args []string) (interface{}, error) {
	cmds := s.Session.History()
	if len(args) > 0 {
		n, err := IntArg(args, 0, "N")
		if err != nil {
			return nil, err
		}
		if n >= 0 && n < len(cmds) {
			cmds = cmds[len(cmds)-n:]
		}
	}
	h := make(History, len(cmds))
	for n, cmd := range cmds {
		h[n] = cmd.String()
	}
	return h, nil
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf, err := config.Load(configFile, config.Default())
	if err != nil {
		log.Fatalln(err)
	}
	session := sparki.NewSession(conf, nil, conf.NewLogger())
	if conf.Bridge.URL != "" {
		pub, err := mqtt.NewPublisher(conf.Bridge.URL, conf.Bridge.RobotID, session.Logger)
		if err != nil {
			log.Fatalln(err)
		}
		if err := pub.Start(); err != nil {
			log.Fatalf("bridge %s: %v", conf.Bridge.URL, err)
		}
		defer pub.Close()
		pub.Attach(session)
	}
	New(conf, session).WithAutoConnect(true).Run(flag.Args()...)
}

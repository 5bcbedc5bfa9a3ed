package main

import (
	"bufio"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/creack/pty"
	"github.com/kballard/go-shellquote"
)

type jobMsg interface {
	isJob()
	jobID() int
}

type jobStartedMsg struct {
	ID    int
	Title string
}

type jobLogMsg struct {
	ID    int
	Title string
	Line  string
}

type jobFinishedMsg struct {
	ID    int
	Title string
	Err   error
}

type jobChannelClosedMsg struct {
	ID int
}

func (jobStartedMsg) isJob()       {}
func (jobLogMsg) isJob()           {}
func (jobFinishedMsg) isJob()      {}
func (jobChannelClosedMsg) isJob() {}

func (msg jobStartedMsg) jobID() int       { return msg.ID }
func (msg jobLogMsg) jobID() int           { return msg.ID }
func (msg jobFinishedMsg) jobID() int      { return msg.ID }
func (msg jobChannelClosedMsg) jobID() int { return msg.ID }

type jobRequest struct {
	id       int
	title    string
	command  string
	args     []string
	onFinish func(error)
}

// jobManager runs one external command at a time; later requests queue.
type jobManager struct {
	nextID  int
	queue   []jobRequest
	current *jobRequest
	ch      <-chan jobMsg
}

func newJobManager() *jobManager {
	return &jobManager{}
}

func (jm *jobManager) Enqueue(req jobRequest) tea.Cmd {
	jm.nextID++
	req.id = jm.nextID
	jm.queue = append(jm.queue, req)
	return jm.nextCmd()
}

func (jm *jobManager) Running() bool { return jm.current != nil }

func (jm *jobManager) Pending() int { return len(jm.queue) }

// Handle consumes a job message and returns the command that keeps the
// channel drained or starts the next job.
func (jm *jobManager) Handle(msg jobMsg) tea.Cmd {
	if jm.current == nil || msg.jobID() != jm.current.id {
		return nil
	}
	switch msg := msg.(type) {
	case jobStartedMsg, jobLogMsg:
		return waitForJobMsg(jm.ch, jm.current.id)
	case jobFinishedMsg:
		if jm.current.onFinish != nil {
			jm.current.onFinish(msg.Err)
		}
		return waitForJobMsg(jm.ch, jm.current.id)
	case jobChannelClosedMsg:
		jm.current = nil
		jm.ch = nil
		return jm.nextCmd()
	}
	return nil
}

func (jm *jobManager) nextCmd() tea.Cmd {
	if jm.current != nil || len(jm.queue) == 0 {
		return nil
	}
	req := jm.queue[0]
	jm.queue = jm.queue[1:]
	jm.current = &req

	ch := make(chan jobMsg)
	jm.ch = ch
	go runJob(req, ch)
	return waitForJobMsg(ch, req.id)
}

func runJob(req jobRequest, ch chan<- jobMsg) {
	defer close(ch)

	ch <- jobStartedMsg{ID: req.id, Title: req.title}

	cmd := exec.Command(req.command, req.args...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		ch <- jobLogMsg{ID: req.id, Title: req.title, Line: err.Error()}
		ch <- jobFinishedMsg{ID: req.id, Title: req.title, Err: err}
		return
	}
	defer ptmx.Close()

	scanner := bufio.NewScanner(ptmx)
	for scanner.Scan() {
		ch <- jobLogMsg{ID: req.id, Title: req.title, Line: scanner.Text()}
	}
	ch <- jobFinishedMsg{ID: req.id, Title: req.title, Err: cmd.Wait()}
}

func waitForJobMsg(ch <-chan jobMsg, id int) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return jobChannelClosedMsg{ID: id}
		}
		return msg
	}
}

var errEmptyOpenCommand = errors.New("open command is empty")

// openCommandArgs splits a shell-style command template and substitutes the
// saved file path for every "{path}". Without a placeholder the path is
// appended as the last argument.
func openCommandArgs(template, path string) (string, []string, error) {
	words, err := shellquote.Split(strings.TrimSpace(template))
	if err != nil {
		return "", nil, fmt.Errorf("parse open command: %w", err)
	}
	if len(words) == 0 {
		return "", nil, errEmptyOpenCommand
	}
	substituted := false
	for i, w := range words {
		if strings.Contains(w, "{path}") {
			words[i] = strings.ReplaceAll(w, "{path}", path)
			substituted = true
		}
	}
	if !substituted {
		words = append(words, path)
	}
	return words[0], words[1:], nil
}

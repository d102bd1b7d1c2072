package shell

import (
	"embed"
	"errors"
	"sort"
	"strings"
)

//go:embed helptext/*.txt
var helptext embed.FS

func helpTopics() []string {
	entries, err := helptext.ReadDir("helptext")
	if err != nil {
		return nil
	}
	var topics []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".txt")
		if name != "usage" {
			topics = append(topics, name)
		}
	}
	sort.Strings(topics)
	return topics
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	topic := "usage"
	if len(cmd.args) > 0 {
		topic = cmd.args[0]
	}
	dat, err := helptext.ReadFile("helptext/" + topic + ".txt")
	if err != nil {
		return nil, errors.New("there is no help text for the topic " + topic)
	}
	return msg(strings.TrimRight(string(dat), "\n")), nil
}

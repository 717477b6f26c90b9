package zoneserver

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// greeterDelay gives the joiner time to process its replay before the
// welcome lands.
const greeterDelay = 500 * time.Millisecond

var greetings = []string{
	"Welcome to %s, %s. Speak and the zone will hear you.",
	"%s grows a little brighter. Well met, %s.",
	"Ah, %s has a new face. Make yourself at home, %s.",
}

// greeter is the resident AI character. It does not hold a connection;
// it speaks straight into the zone.
type greeter struct {
	s    *Server
	id   string
	name string
	seq  atomic.Int64
}

func newGreeter(s *Server) *greeter {
	return &greeter{
		s:    s,
		id:   "npc-" + uuid.NewString(),
		name: "Willow",
	}
}

// welcome greets a character that just entered the zone.
func (g *greeter) welcome(z *zone, name string) {
	n := g.seq.Add(1) - 1
	line := greetings[int(n)%len(greetings)]

	time.AfterFunc(greeterDelay, func() {
		g.say(z, fmt.Sprintf(line, z.id, name))
	})
}

func (g *greeter) say(z *zone, content string) {
	ev := gameEvent{
		Type:       frameGameEvent,
		EventType:  evMessage,
		SenderID:   g.id,
		SenderName: g.name,
		Content:    content,
		IsAI:       true,
	}
	z.record(ev)
	g.s.broadcast(z, ev, nil)
}

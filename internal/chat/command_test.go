package chat

import "testing"

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{
			name: "message",
			cmd:  Message{Content: "hello zone"},
			want: `{"type":"message","content":"hello zone"}`,
		},
		{
			name: "emote",
			cmd:  Emote{Content: "bows deeply"},
			want: `{"type":"emote","content":"bows deeply"}`,
		},
		{
			name: "interaction",
			cmd:  Interaction{TargetEntityID: "e7", Action: "opens", Details: "slowly"},
			want: `{"type":"interaction","target_entity_id":"e7","action":"opens","details":"slowly"}`,
		},
		{
			name: "interaction omits empty details",
			cmd:  Interaction{TargetEntityID: "e7", Action: "opens"},
			want: `{"type":"interaction","target_entity_id":"e7","action":"opens"}`,
		},
		{
			name: "movement",
			cmd:  Movement{ToZoneID: "z-embermoor"},
			want: `{"type":"movement","to_zone_id":"z-embermoor"}`,
		},
		{
			name: "typing started",
			cmd:  Typing{Active: true},
			want: `{"type":"typing","is_typing":true}`,
		},
		{
			name: "typing stopped",
			cmd:  Typing{Active: false},
			want: `{"type":"typing","is_typing":false}`,
		},
		{
			name: "who",
			cmd:  Who{},
			want: `{"type":"who"}`,
		},
		{
			name: "usage check",
			cmd:  UsageCheck{},
			want: `{"type":"usage_check"}`,
		},
		{
			name: "ping",
			cmd:  Ping{},
			want: `{"type":"ping"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeCommand(tt.cmd)
			if err != nil {
				t.Fatalf("EncodeCommand: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("EncodeCommand(%#v) = %s, want %s", tt.cmd, data, tt.want)
			}
		})
	}
}

type bogusCommand struct{}

func (bogusCommand) commandType() CommandType { return "bogus" }

func TestEncodeCommandUnknown(t *testing.T) {
	if _, err := EncodeCommand(bogusCommand{}); err == nil {
		t.Fatal("expected an error for an unhandled command type")
	}
}

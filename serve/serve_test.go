// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package serve

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aclements/go-gg/table"
	"github.com/tidwall/gjson"
	"golang.org/x/net/websocket"

	"github.com/quickplot/quickplot/container/ggtable"
	"github.com/quickplot/quickplot/core"
	_ "github.com/quickplot/quickplot/render/ggsvg"
	"github.com/quickplot/quickplot/stream"
)

// cities is a fixture with one slice dimension (city).
func cities(t *testing.T) *ggtable.Frame {
	t.Helper()
	tab := new(table.Builder).
		Add("day", []float64{0, 1, 2, 0, 1, 2}).
		Add("temp", []float64{14, 15, 13, 11, 12, 10}).
		Add("city", []string{"SF", "SF", "SF", "NYC", "NYC", "NYC"}).
		Done()
	f, err := ggtable.New(tab, "day", "city")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	f := cities(t)
	spec, err := core.Call(f, core.KindLine, core.Options{"x": "day", "y": "temp"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	s, err := New(spec, f, Title("temps"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, s
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := strings.Replace(ts.URL, "http://", "ws://", 1) + "/ws"
	ws, err := websocket.Dial(url, "", ts.URL)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func recvFrame(t *testing.T, ws *websocket.Conn) string {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg string
	if err := websocket.Message.Receive(ws, &msg); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if e := gjson.Get(msg, "error"); e.Exists() && e.Str != "" {
		t.Fatalf("frame carries error: %s", e.Str)
	}
	svg := gjson.Get(msg, "svg").Str
	if !strings.Contains(svg, "<svg") {
		t.Fatalf("frame is not SVG: %.80q", svg)
	}
	return svg
}

func TestPage(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	for _, want := range []string{
		"<title>temps</title>",
		">city</label>",
		"<option>SF</option>",
		"<option>NYC</option>",
		"new WebSocket",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page lacks %q", want)
		}
	}

	resp2, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", resp2.StatusCode)
	}
}

func TestInitialFrame(t *testing.T) {
	ts, _ := newTestServer(t)
	ws := dialWS(t, ts)
	recvFrame(t, ws)
}

func TestControlChange(t *testing.T) {
	ts, _ := newTestServer(t)
	ws := dialWS(t, ts)
	first := recvFrame(t, ws)

	if err := websocket.Message.Send(ws, `{"field": "city", "value": "NYC"}`); err != nil {
		t.Fatalf("Send: %v", err)
	}
	second := recvFrame(t, ws)
	if first == second {
		t.Fatal("frame unchanged after control change")
	}
}

func TestStreamPush(t *testing.T) {
	buf, err := stream.NewBuffer(core.Schema{
		{Name: "t", Kind: core.Float, Index: true},
		{Name: "v", Kind: core.Float},
	}, 100)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	for i := 0; i < 3; i++ {
		buf.Append(stream.Row{"t": float64(i), "v": float64(i)})
	}
	spec, err := core.Call(buf, core.KindLine, core.Options{"x": "t", "y": "v", "dynamic": true})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	s, err := New(spec, buf, Interval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ws := dialWS(t, ts)
	first := recvFrame(t, ws)

	buf.Append(stream.Row{"t": 3.0, "v": 9.0})
	second := recvFrame(t, ws)
	if first == second {
		t.Fatal("no redraw pushed after new rows")
	}
}

package formats

import (
	"testing"

	"github.com/ytget/letv/types"
)

func TestRank(t *testing.T) {
	if rank(types.Format{Quality: "350"}) != 0 {
		t.Fatal("350 should rank first")
	}
	if rank(types.Format{Quality: "1080p"}) != len(Labels)-1 {
		t.Fatal("1080p should rank last")
	}
	if rank(types.Format{Quality: "4k"}) != -1 {
		t.Fatal("unknown label should rank -1")
	}
}

func TestExtEquals(t *testing.T) {
	f := types.Format{Ext: "mp4"}
	if !extEquals(f, "mp4") {
		t.Fatal("mp4 should match")
	}
	if !extEquals(f, ".MP4") {
		t.Fatal(".MP4 should match")
	}
	if extEquals(f, "flv") {
		t.Fatal("flv should not match mp4")
	}
	if !extEquals(f, "") {
		t.Fatal("empty ext should not filter")
	}
}

func TestWithinHeight(t *testing.T) {
	hd := types.Format{Quality: "720p", Height: 720}
	sd := types.Format{Quality: "1300"}
	if !withinHeight(hd, 0, 0) {
		t.Fatal("no bounds should pass")
	}
	if !withinHeight(hd, 480, 1080) {
		t.Fatal("720p should be within 480..1080")
	}
	if withinHeight(hd, 1080, 0) {
		t.Fatal("720p should not be >=1080")
	}
	if !withinHeight(sd, 0, 360) {
		t.Fatal("bitrate label should satisfy an upper bound")
	}
	if withinHeight(sd, 360, 0) {
		t.Fatal("bitrate label should not satisfy a lower bound")
	}
}

func TestBetter(t *testing.T) {
	if !better(types.Format{Quality: "1080p", Height: 1080}, types.Format{Quality: "720p", Height: 720}) {
		t.Fatal("1080p should beat 720p")
	}
	if !better(types.Format{Quality: "1300"}, types.Format{Quality: "1000"}) {
		t.Fatal("1300 should beat 1000")
	}
	if better(types.Format{Quality: "1300"}, types.Format{Quality: "720p", Height: 720}) {
		t.Fatal("1300 should not beat 720p")
	}
}

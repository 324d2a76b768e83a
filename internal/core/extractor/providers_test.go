package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestRenderImage(t *testing.T) {
	tests := []struct {
		fixture  string
		expected string
	}{
		{"imgur-image.json", "470×334 12.5KiB sfw"},
		{"imgur-image-section.json", "640×799 97.2KiB /r/pics sfw"},
		{"imgur-image-title.json", "720×540 32.5KiB /r/pics sfw ፤ My army is ready, we attack at nightfall"},
		{"imgur-video-description.json", "667×500 8.2MiB /r/awesomenature sfw ፤ #dolphinsandshit"},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			got, err := renderImage(gjson.Parse(fixture(t, tt.fixture)))
			if err != nil {
				t.Fatalf("renderImage() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("renderImage() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestRenderImageFields(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		field    string
	}{
		{
			name:     "NSFW true",
			input:    `{"data":{"width":1,"height":2,"nsfw":true}}`,
			expected: "1×2 NSFW",
		},
		{
			name:     "NSFW absent",
			input:    `{"data":{"width":1,"height":2}}`,
			expected: "1×2 ¿fw",
		},
		{
			name:     "NSFW unreadable",
			input:    `{"data":{"width":1,"height":2,"nsfw":"maybe"}}`,
			expected: "1×2 ?fw",
		},
		{
			name:     "webm size before size",
			input:    `{"data":{"width":1,"height":2,"webm_size":2048,"size":1,"nsfw":false}}`,
			expected: "1×2 2.0KiB sfw",
		},
		{
			name:     "Empty title beats description",
			input:    `{"data":{"width":1,"height":2,"nsfw":false,"title":"","description":"desc"}}`,
			expected: "1×2 sfw ፤",
		},
		{
			name:     "Description when title is null",
			input:    `{"data":{"width":1,"height":2,"nsfw":false,"title":null,"description":"desc"}}`,
			expected: "1×2 sfw ፤ desc",
		},
		{
			name:  "Missing width",
			input: `{"data":{"height":2}}`,
			field: "width",
		},
		{
			name:  "Missing height",
			input: `{"data":{"width":1}}`,
			field: "height",
		},
		{
			name:  "Missing data",
			input: `{"success":false}`,
			field: "data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderImage(gjson.Parse(tt.input))
			if tt.field != "" {
				var fe *FieldError
				if !errors.As(err, &fe) || fe.Field != tt.field {
					t.Fatalf("renderImage() error = %v; want FieldError on %s", err, tt.field)
				}
				return
			}
			if err != nil {
				t.Fatalf("renderImage() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("renderImage() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestRenderGallery(t *testing.T) {
	tests := []struct {
		fixture  string
		expected string
	}{
		{"imgur-album-single.json", "https://i.imgur.com/tUulJaV.jpg ፤ 640×770 87.4KiB ?fw ፤ Branch manager and Assistant Branch manager"},
		{"imgur-album-animated.json", "https://i.imgur.com/KbVOQOm.mp4 ፤ 580×580 1.2MiB ?fw ፤ Bango cat"},
		{"imgur-album-multi.json", "0/2 animated ፤ 867.2KiB ?fw ፤ Transformation Tuesday: went from 6xl to 3xl... still got ways to go. Thanks imgur"},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			got, err := renderGallery(gjson.Parse(fixture(t, tt.fixture)))
			if err != nil {
				t.Fatalf("renderGallery() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("renderGallery() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestRenderGalleryFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"Missing title", `{"data":{"images_count":1,"images":[]}}`, "title"},
		{"Title not a string", `{"data":{"title":null,"images_count":1,"images":[]}}`, "title"},
		{"Missing count", `{"data":{"title":"t","images":[]}}`, "images_count"},
		{"Missing images", `{"data":{"title":"t","images_count":1}}`, "images"},
		{"Images not an array", `{"data":{"title":"t","images_count":1,"images":{}}}`, "images"},
		{"Entry without size", `{"data":{"title":"t","images_count":2,"images":[{"size":1},{"link":"x"}]}}`, "images[].size"},
		{"Single entry without link", `{"data":{"title":"t","images_count":1,"images":[{"width":1,"height":1}]}}`, "images[].link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderGallery(gjson.Parse(tt.input))
			var fe *FieldError
			if !errors.As(err, &fe) || fe.Field != tt.field {
				t.Fatalf("renderGallery() error = %v; want FieldError on %s", err, tt.field)
			}
		})
	}
}

func TestRenderGalleryAnimatedCount(t *testing.T) {
	input := `{"data":{"title":"","nsfw":true,"images_count":3,"images":[
		{"animated":true,"mp4_size":1024},
		{"animated":false,"size":1024},
		{"animated":true,"webm_size":1024}]}}`

	got, err := renderGallery(gjson.Parse(input))
	if err != nil {
		t.Fatalf("renderGallery() error = %v", err)
	}
	if want := "2/3 animated ፤ 3.0KiB NSFW"; got != want {
		t.Errorf("renderGallery() = %q; want %q", got, want)
	}
}

func TestRenderTweet(t *testing.T) {
	got, err := renderTweet(gjson.Parse(fixture(t, "twitter-multiline.json")))
	if err != nil {
		t.Fatalf("renderTweet() error = %v", err)
	}
	want := "Joel the Forklift! — JIM MORRISON: people are strange, when you’re a stranger ¶ PRODUCER: nice ¶ JIM MORRISON: people are docks, when you’re a doctor ¶ PRODUCER: what ¶ JIM MORRISON: *wiggling fingers* people are ticks, when you’re a tickler ¶ PRODUCER (lips on mic): uh, I think we’re good Jim"
	if got != want {
		t.Errorf("renderTweet() = %q; want %q", got, want)
	}
}

func TestRenderTweetFields(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		err      string
	}{
		{"Simple", `{"full_text":"a\nb","user":{"name":"X"}}`, "X — a ¶ b", ""},
		{"Missing text", `{"user":{"name":"X"}}`, "", "full_text: missing"},
		{"Text not text", `{"full_text":5,"user":{"name":"X"}}`, "", "full_text: not a string"},
		{"No user", `{"full_text":"a"}`, "", "user: missing"},
		{"User not object", `{"full_text":"a","user":"X"}`, "", "user: not an object"},
		{"User lacks name", `{"full_text":"a","user":{}}`, "", "name: missing"},
		{"User name not text", `{"full_text":"a","user":{"name":[]}}`, "", "name: not a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderTweet(gjson.Parse(tt.input))
			if tt.err != "" {
				if err == nil || err.Error() != tt.err {
					t.Fatalf("renderTweet() error = %v; want %q", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("renderTweet() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("renderTweet() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestVideo(t *testing.T) {
	w := newFakeWebs()
	w.docs["youtube:JwhjqdSPw5g"] = fixture(t, "youtube-video.json")

	got, err := Video(context.Background(), w, "JwhjqdSPw5g")
	if err != nil {
		t.Fatalf("Video() error = %v", err)
	}
	want := "3m 2016-01-14 ፤ [Yayo Takagi] ፤ Platinum Level Circulation (Avicii x Tsukihi Araragi x Nadeko Sengoku)"
	if got != want {
		t.Errorf("Video() = %q; want %q", got, want)
	}
}

func TestRenderVideoDurations(t *testing.T) {
	tests := []struct {
		duration string
		expected string
	}{
		{"PT5M", "5m"},
		{"PT45S", "45s"},
		{"PT1H", "1h"},
		{"PT2H30M", "2h"},
		{"PT59M59S", "59m"},
	}

	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			input := `{"items":[{"snippet":{"title":"t","channelTitle":"c","publishedAt":"2020-02-03T04:05:06Z"},` +
				`"contentDetails":{"duration":"` + tt.duration + `"}}]}`
			got, err := renderVideo(gjson.Parse(input))
			if err != nil {
				t.Fatalf("renderVideo() error = %v", err)
			}
			if want := tt.expected + " 2020-02-03 ፤ [c] ፤ t"; got != want {
				t.Errorf("renderVideo() = %q; want %q", got, want)
			}
		})
	}
}

func TestRenderVideoFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Missing items", `{}`},
		{"Empty items", `{"items":[]}`},
		{"Missing title", `{"items":[{"snippet":{"channelTitle":"c","publishedAt":"2020-02-03T04:05:06Z"},"contentDetails":{"duration":"PT1S"}}]}`},
		{"Bad date", `{"items":[{"snippet":{"title":"t","channelTitle":"c","publishedAt":"yesterday"},"contentDetails":{"duration":"PT1S"}}]}`},
		{"Bad duration", `{"items":[{"snippet":{"title":"t","channelTitle":"c","publishedAt":"2020-02-03T04:05:06Z"},"contentDetails":{"duration":"five minutes"}}]}`},
		{"Missing duration", `{"items":[{"snippet":{"title":"t","channelTitle":"c","publishedAt":"2020-02-03T04:05:06Z"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := renderVideo(gjson.Parse(tt.input)); err == nil {
				t.Errorf("renderVideo() = %q; want error", got)
			}
		})
	}
}

func TestMusic(t *testing.T) {
	w := newFakeWebs()
	w.docs["spotify:tracks/0DiWol3AO6WpXZgp0goxAV"] = fixture(t, "spotify-track.json")
	w.docs["spotify:playlists/37i9dQZF1DXcBWIGoYBM5M"] = `{"name":"Today's Top Hits"}`

	got, err := Music(context.Background(), w, "track", "0DiWol3AO6WpXZgp0goxAV")
	if err != nil {
		t.Fatalf("Music() error = %v", err)
	}
	if want := "track: Daft Punk — One More Time ፤ Discovery 5m"; got != want {
		t.Errorf("Music() = %q; want %q", got, want)
	}

	got, err = Music(context.Background(), w, "playlist", "37i9dQZF1DXcBWIGoYBM5M")
	if err != nil {
		t.Fatalf("Music() error = %v", err)
	}
	if want := "playlist: Today's Top Hits"; got != want {
		t.Errorf("Music() = %q; want %q", got, want)
	}

	if _, err := renderMusic("track", gjson.Parse(`{"artists":[]}`)); err == nil {
		t.Error("renderMusic() without name succeeded")
	}
}

func TestStreamingVideo(t *testing.T) {
	const base = "https://v.redd.it/abc123/"
	manifest := `<MPD><Representation bandwidth="10"><BaseURL>DASH_240</BaseURL></Representation>` +
		`<Representation bandwidth="99"><BaseURL>DASH_720</BaseURL></Representation></MPD>`

	tests := []struct {
		name     string
		pages    map[string]fakePage
		expected string
	}{
		{
			name: "Title and stream",
			pages: map[string]fakePage{
				base:                     htmlPage("<title>cat video</title>"),
				base + "DASHPlaylist.mpd": {body: manifest},
			},
			expected: base + "DASH_720 - cat video",
		},
		{
			name: "Stream only",
			pages: map[string]fakePage{
				base + "DASHPlaylist.mpd": {body: manifest},
			},
			expected: "Reddit 'dash' link without title: " + base + "DASH_720",
		},
		{
			name: "Title only",
			pages: map[string]fakePage{
				base:                     htmlPage("<title>cat video</title>"),
				base + "DASHPlaylist.mpd": {body: "<MPD></MPD>"},
			},
			expected: "cat video [video link failed: " + base + " no matching representation found]",
		},
		{
			name:     "Neither",
			pages:    map[string]fakePage{},
			expected: "Reddit 'dash' link mega-fail: " + base + " [bad response code 404 from " + base + "DASHPlaylist.mpd]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newFakeWebs()
			w.pages = tt.pages
			got, err := StreamingVideo(context.Background(), w, "abc123", 0)
			if err != nil {
				t.Fatalf("StreamingVideo() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("StreamingVideo() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestStreamingVideoManifestWindow(t *testing.T) {
	const base = "https://v.redd.it/big/"
	manifest := `<MPD><Representation bandwidth="5"><BaseURL>early</BaseURL></Representation>` +
		strings.Repeat("<!-- padding -->", 4096) +
		`<Representation bandwidth="50"><BaseURL>late</BaseURL></Representation></MPD>`

	w := newFakeWebs()
	w.pages[base+"DASHPlaylist.mpd"] = fakePage{body: manifest}

	got, err := StreamingVideo(context.Background(), w, "big", 0)
	if err != nil {
		t.Fatalf("StreamingVideo() error = %v", err)
	}
	if want := "Reddit 'dash' link without title: " + base + "early"; got != want {
		t.Errorf("StreamingVideo() = %q; want %q", got, want)
	}
}

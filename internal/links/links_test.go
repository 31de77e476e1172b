package links

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apphttp "github.com/perini/anexos-downloader/internal/http"
	"github.com/perini/anexos-downloader/internal/model"
)

var (
	defaultMarkers    = []string{"Anexo_I", "Anexo_II"}
	defaultExtensions = []string{"pdf", "xls", "xlsx", "doc", "docx"}
)

func TestRule_IsTargetFile(t *testing.T) {
	tests := []struct {
		name            string
		href            string
		caseInsensitive bool
		want            bool
	}{
		{"marker with suffix", "Anexo_I_Rol.pdf", false, true},
		{"marker at end of stem", "/media/Anexo_I.pdf", false, true},
		{"second marker", "/media/Anexo_II_DUT.xlsx", false, true},
		{"longer roman numeral", "Anexo_III.pdf", false, false},
		{"wrong extension", "Anexo_I.txt", false, false},
		{"no marker", "/media/Relatorio.pdf", false, false},
		{"xls", "Anexo_II.xls", false, true},
		{"doc", "Anexo_I-2024.doc", false, true},
		{"docx", "Anexo_I.docx", false, true},
		{"query string after extension", "Anexo_I.pdf?v=2", false, false},
		{"extension only", "Anexo_I", false, false},
		{"case sensitive marker", "anexo_i_rol.pdf", false, false},
		{"case sensitive extension", "Anexo_I.PDF", false, false},
		{"case insensitive marker", "anexo_i_rol.pdf", true, true},
		{"case insensitive extension", "Anexo_I.PDF", true, true},
		{"case insensitive still bounded", "ANEXO_III.PDF", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := NewRule(defaultMarkers, defaultExtensions, tt.caseInsensitive)
			if got := rule.IsTargetFile(tt.href); got != tt.want {
				t.Errorf("IsTargetFile(%q) = %v, want %v", tt.href, got, tt.want)
			}
		})
	}
}

func TestRule_ExtensionsWithDot(t *testing.T) {
	rule := NewRule([]string{"Annex I", " "}, []string{".pdf", ""}, false)
	if !rule.IsTargetFile("Annex I - list.pdf") {
		t.Error("expected dotted extension to be accepted")
	}
	if rule.HasAnyMarker("Annex II.pdf") {
		t.Error("Annex II must not match the Annex I marker")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		href   string
		origin string
		want   string
	}{
		{"/media/x.pdf", "https://www.gov.br", "https://www.gov.br/media/x.pdf"},
		{"/media/x.pdf", "https://www.gov.br/", "https://www.gov.br/media/x.pdf"},
		{"media/x.pdf", "https://www.gov.br", "https://www.gov.br/media/x.pdf"},
		{"https://other.org/x.pdf", "https://www.gov.br", "https://other.org/x.pdf"},
		{"http://other.org/x.pdf", "https://www.gov.br", "http://other.org/x.pdf"},
		{"//cdn.gov.br/x.pdf", "https://www.gov.br", "https://cdn.gov.br/x.pdf"},
		{"  /media/x.pdf ", "https://www.gov.br", "https://www.gov.br/media/x.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			if got := Normalize(tt.href, tt.origin); got != tt.want {
				t.Errorf("Normalize(%q, %q) = %q, want %q", tt.href, tt.origin, got, tt.want)
			}
		})
	}
}

func TestOriginOf(t *testing.T) {
	got, err := OriginOf("https://www.gov.br/ans/pt-br/page?x=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://www.gov.br" {
		t.Errorf("OriginOf() = %q", got)
	}
	if _, err := OriginOf("/relative"); err == nil {
		t.Error("expected error for relative URL")
	}
}

func TestHrefs(t *testing.T) {
	doc := `<html><head><link href="/style.css"></head><body>
		<a href="/a.pdf">A</a>
		<a name="anchor">no href</a>
		<area href="/b.pdf">
		<a href="https://x.org/c.pdf">C</a>
	</body></html>`

	hrefs, err := Hrefs(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Hrefs failed: %v", err)
	}
	want := []string{"/style.css", "/a.pdf", "/b.pdf", "https://x.org/c.pdf"}
	if strings.Join(hrefs, ",") != strings.Join(want, ",") {
		t.Errorf("Hrefs() = %v, want %v", hrefs, want)
	}
}

const fakePage = `<html><body>
	<a href="/media/Anexo_I_Rol_2024.pdf">Annex I</a>
	<a href="/media/Anexo_III.pdf">Annex III</a>
	<a href="https://cdn.example.org/files/Anexo_II_DUT.xlsx">Annex II</a>
	<a href="/media/Anexo_I_Rol_2024.pdf">Annex I again</a>
	<a href="/media/Anexo_I.txt">Text</a>
	<a href="/contato">Contact</a>
</body></html>`

func TestExtractor_ExtractFromHTML(t *testing.T) {
	rule := NewRule(defaultMarkers, defaultExtensions, false)

	t.Run("keeps duplicates", func(t *testing.T) {
		e := NewExtractor(nil, rule, Options{}, nil)
		urls, err := e.ExtractFromHTML(strings.NewReader(fakePage), "https://www.gov.br")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{
			"https://www.gov.br/media/Anexo_I_Rol_2024.pdf",
			"https://cdn.example.org/files/Anexo_II_DUT.xlsx",
			"https://www.gov.br/media/Anexo_I_Rol_2024.pdf",
		}
		if strings.Join(urls, "\n") != strings.Join(want, "\n") {
			t.Errorf("got %v, want %v", urls, want)
		}
	})

	t.Run("deduplicates when asked", func(t *testing.T) {
		e := NewExtractor(nil, rule, Options{Deduplicate: true}, nil)
		urls, err := e.ExtractFromHTML(strings.NewReader(fakePage), "https://www.gov.br")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(urls) != 2 {
			t.Errorf("got %d URLs, want 2: %v", len(urls), urls)
		}
	})
}

func TestExtractor_Extract(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, fakePage)
	}))
	defer srv.Close()

	var events []model.ProgressEvent
	client := apphttp.NewClient("annex-test", 5*time.Second)
	rule := NewRule(defaultMarkers, defaultExtensions, false)
	e := NewExtractor(client, rule, Options{}, func(ev model.ProgressEvent) {
		events = append(events, ev)
	})

	urls, err := e.Extract(context.Background(), srv.URL+"/page")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(urls) != 3 {
		t.Fatalf("got %d URLs, want 3: %v", len(urls), urls)
	}
	// without a base origin, relative links resolve against the page origin
	if urls[0] != srv.URL+"/media/Anexo_I_Rol_2024.pdf" {
		t.Errorf("urls[0] = %q", urls[0])
	}
	if gotUA != "annex-test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if len(events) == 0 {
		t.Error("expected progress events")
	}
}

func TestExtractor_ExtractPageUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := apphttp.NewClient("ua", 5*time.Second)
	e := NewExtractor(client, NewRule(defaultMarkers, defaultExtensions, false), Options{}, nil)

	_, err := e.Extract(context.Background(), srv.URL)
	if !errors.Is(err, model.ErrFetch) {
		t.Errorf("Extract() error = %v, want ErrFetch", err)
	}
}

// truncatedPage serves the start of a document and then fails.
type truncatedPage struct{}

func (truncatedPage) Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	r := io.MultiReader(strings.NewReader(`<html><body><a href="/media/Anexo_I.pdf">`), failingReader{})
	return io.NopCloser(r), -1, nil
}

func TestExtractor_BodyReadErrorIsFetchError(t *testing.T) {
	rule := NewRule(defaultMarkers, defaultExtensions, false)
	e := NewExtractor(truncatedPage{}, rule, Options{BaseOrigin: "https://www.gov.br"}, nil)

	_, err := e.Extract(context.Background(), "https://www.gov.br/page")
	if !errors.Is(err, model.ErrFetch) {
		t.Errorf("Extract() error = %v, want ErrFetch", err)
	}
	if errors.Is(err, model.ErrParse) {
		t.Error("a failed read must not be reported as a parse error")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestHrefsReadError(t *testing.T) {
	_, err := Hrefs(failingReader{})
	if !errors.Is(err, model.ErrParse) {
		t.Errorf("Hrefs() error = %v, want ErrParse", err)
	}
}

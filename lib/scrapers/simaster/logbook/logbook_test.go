package logbook

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"malaskkn/lib/scrapers/simaster/core"
	"malaskkn/lib/telemetry"
)

func TestListPrograms(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/simaster/logbook")
	defer cleanup()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/beranda", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<li><a href="/kkn/logbook/list_program">Logbook KKN</a></li>`)
	})
	mux.HandleFunc("/kkn/logbook/list_program", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `
			<input type="hidden" name="simasterUGM_token" value="page-token"/>
			<script>$('#tb').DataTable({"ajax":{"url":"/kkn/logbook/data_program/25","type":"POST"}});</script>
		`)
	})
	mux.HandleFunc("/kkn/logbook/data_program/25", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "page-token", r.FormValue("simasterUGM_token"))
		require.Equal(t, "25", r.FormValue("length"))
		fmt.Fprint(w, `{
			"data": [
				{"program_mhs_id": "101", "program_mhs_judul": "Sosialisasi bank sampah", "action": "<a href=\"/kkn/rpp/kegiatan_index/42\">Kegiatan</a>"},
				{"program_mhs_id": "102", "program_mhs_judul": "Pendampingan UMKM", "action": "<a href=\"/kkn/rpp/kegiatan_index/43\">Kegiatan</a>"}
			],
			"csrf_value": "rotated-token"
		}`)
	})

	coreClient, err := core.NewClient(context.Background(), core.ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	client := NewClient(coreClient)

	programs, err := client.ListPrograms(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 2)
	require.Equal(t, "101", programs[0].Id)
	require.Equal(t, "Sosialisasi bank sampah", programs[0].Title)
	require.Contains(t, programs[0].ActionHtml, "kegiatan_index/42")

	// the data endpoint rotates the token inside its json payload; the
	// session must pick it up so the next caller doesn't go stale
	require.Equal(t, "rotated-token", coreClient.Token())
}

func TestListProgramsLinkNotFound(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/beranda", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>redesigned layout with nothing useful</body></html>`)
	})

	coreClient, err := core.NewClient(context.Background(), core.ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	client := NewClient(coreClient)

	_, err = client.ListPrograms(context.Background())
	var notFound *core.LinkNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListMainEntriesFromServer(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/kkn/rpp/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rppFixture)
	})

	coreClient, err := core.NewClient(context.Background(), core.ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	client := NewClient(coreClient)

	program := Program{
		Id:         "101",
		Title:      "Sosialisasi bank sampah",
		ActionHtml: `<a href="/kkn/rpp/42">Lihat RPP</a>`,
	}
	entries, err := client.ListMainEntries(context.Background(), program)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, StatusNotAttended, entries[0].AttendanceStatus())
}

func TestListMainEntriesServerError(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/kkn/rpp/42", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	})

	coreClient, err := core.NewClient(context.Background(), core.ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	client := NewClient(coreClient)

	program := Program{ActionHtml: `<a href="/kkn/rpp/42">Lihat RPP</a>`}

	// a failed page fetch must never degrade to an empty result
	entries, err := client.ListMainEntries(context.Background(), program)
	require.Empty(t, entries)
	var transport *core.TransportError
	require.ErrorAs(t, err, &transport)

	picEntries, err := client.ListPicEntries(context.Background(), program)
	require.Empty(t, picEntries)
	require.ErrorAs(t, err, &transport)
}

func TestListMainEntriesMissingTable(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/kkn/rpp/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>halaman sedang diperbarui</p></body></html>`)
	})

	coreClient, err := core.NewClient(context.Background(), core.ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	client := NewClient(coreClient)

	program := Program{ActionHtml: `<a href="/kkn/rpp/42">Lihat RPP</a>`}

	// a page that parses but lost its report table is a structural
	// failure, not zero entries
	entries, err := client.ListMainEntries(context.Background(), program)
	require.Empty(t, entries)
	var missing *TableNotFoundError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, rppTableId, missing.Table)
	require.Contains(t, missing.Snippet, "halaman sedang diperbarui")
}

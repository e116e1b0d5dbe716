package edit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"malaskkn/lib/scrapers/simaster/core"
	"malaskkn/lib/scrapers/simaster/logbook"
	"malaskkn/lib/timezone"
)

func newFakePortal(t testing.TB, handler http.Handler) (*httptest.Server, Client) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	coreClient, err := core.NewClient(context.Background(), core.ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	return server, NewClient(coreClient)
}

const kegiatanAddPage = `<html><body>
<form action="/kkn/rpp/kegiatan_save" method="post">
	<input type="hidden" name="simasterUGM_token" value="form-token"/>
	<input type="hidden" name="rppMhsId" value="77"/>
	<input type="text" name="judul"/>
</form>
</body></html>`

func TestSubmitSubEntry(t *testing.T) {
	var posted url.Values

	mux := http.NewServeMux()
	mux.HandleFunc("/kkn/rpp/kegiatan_index/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/kkn/rpp/kegiatan_add/42"><i class="fa fa-plus"></i> Tambah</a>
		</body></html>`)
	})
	mux.HandleFunc("/kkn/rpp/kegiatan_add/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, kegiatanAddPage)
	})
	mux.HandleFunc("/kkn/rpp/kegiatan_save", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		posted = r.PostForm
		fmt.Fprint(w, `{"status": "success", "msg": "Data berhasil disimpan", "csrf_value": "rotated-token"}`)
	})

	server, client := newFakePortal(t, mux)

	entry := logbook.MainEntry{
		Title:       "Pelatihan komputer dasar",
		KegiatanUrl: server.URL + "/kkn/rpp/kegiatan_index/42",
	}
	outcome, err := client.SubmitSubEntry(context.Background(), entry, SubEntryForm{
		Title:        "Sesi pengenalan perangkat",
		Duration:     90 * time.Minute,
		At:           time.Date(2024, time.July, 15, 9, 30, 0, 0, timezone.Location),
		Participants: 12,
		Description:  "Pengenalan perangkat keras",
	})
	require.NoError(t, err)
	require.True(t, outcome.OK)
	require.Equal(t, "Data berhasil disimpan", outcome.Message)

	// hidden defaults survive, caller fields override, and the
	// optional fields fall back to their defaults
	require.Equal(t, "form-token", posted.Get("simasterUGM_token"))
	require.Equal(t, "77", posted.Get("rppMhsId"))
	require.Equal(t, "Sesi pengenalan perangkat", posted.Get("judul"))
	require.Equal(t, "90", posted.Get("durasi"))
	require.Equal(t, "2024-07-15 09:30", posted.Get("pelaksanaan"))
	require.Equal(t, "-", posted.Get("sasaran"))
	require.Equal(t, "12", posted.Get("jumPeserta"))
	require.Equal(t, "0", posted.Get("jumDana"))
	require.Equal(t, "Kegiatan terlaksana dengan baik.", posted.Get("hasil"))

	require.Equal(t, "rotated-token", client.Core.Token())
}

func TestSubmitEntry(t *testing.T) {
	var posted url.Values

	mux := http.NewServeMux()
	mux.HandleFunc("/kkn/rpp/55", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/kkn/logbook/add/55">Tambah</a>
		</body></html>`)
	})
	mux.HandleFunc("/kkn/logbook/add/55", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			posted = r.PostForm
			// the portal sometimes answers a successful save with
			// plain html instead of json
			fmt.Fprint(w, `<html><body><p>Data tersimpan.</p></body></html>`)
			return
		}
		// a form without an action posts back to its own url
		fmt.Fprint(w, `<html><body>
			<form method="post">
				<input type="hidden" name="simasterUGM_token" value="add-token"/>
			</form>
		</body></html>`)
	})

	_, client := newFakePortal(t, mux)

	program := logbook.Program{
		Id:         "55",
		Title:      "Program kerja desa",
		ActionHtml: `<a href="/kkn/rpp/55">Lihat RPP</a>`,
	}
	outcome, err := client.SubmitEntry(context.Background(), program, EntryForm{
		Title:     "Sosialisasi program",
		Date:      "15-07-2024",
		Location:  "Balai desa",
		Latitude:  -7.801,
		Longitude: 110.364,
	})
	require.NoError(t, err)
	require.True(t, outcome.OK)

	require.Equal(t, "add-token", posted.Get("simasterUGM_token"))
	require.Equal(t, "Sosialisasi program", posted.Get("judul"))
	require.Equal(t, "15-07-2024", posted.Get("tanggal"))
	require.Equal(t, "Balai desa", posted.Get("lokasi"))
	require.Equal(t, "-7.801", posted.Get("latitude"))
	require.Equal(t, "110.364", posted.Get("longtitude"))
}

const attendancePage = `<html><body>
<input type="hidden" name="simasterUGM_token" value="page-token"/>
<table><tbody>
	<tr>
		<td>Senam pagi (07.00 - 08.00 WIB) [1 Jam]</td>
		<td><span class="label label-success">Sudah Presensi</span></td>
	</tr>
	<tr>
		<td>Kerja bakti (09.00 - 10.00 WIB) [1 Jam]</td>
		<td><button ajaxify="/kkn/timeline/presensi_kegiatan/9001/1/77/88/99">Presensi</button></td>
	</tr>
</tbody></table>
</body></html>`

func TestSubmitAttendance(t *testing.T) {
	var posted url.Values

	mux := http.NewServeMux()
	mux.HandleFunc("/kkn/rpp/kegiatan_index/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, attendancePage)
	})
	mux.HandleFunc("/kkn/timeline/presensi_kegiatan/9001/1/77/88/99", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		posted = r.PostForm
		fmt.Fprint(w, `{"status": "success", "msg": "Presensi tersimpan"}`)
	})

	server, client := newFakePortal(t, mux)
	entry := logbook.MainEntry{KegiatanUrl: server.URL + "/kkn/rpp/kegiatan_index/42"}

	outcome, err := client.SubmitAttendance(context.Background(), entry, "Kerja bakti", -7.795, 110.37)
	require.NoError(t, err)
	require.True(t, outcome.OK)
	require.Equal(t, "Presensi tersimpan", outcome.Message)

	require.Equal(t, "page-token", posted.Get("simasterUGM_token"))
	require.Equal(t, "-7.795", posted.Get("latitude"))
	require.Equal(t, "110.37", posted.Get("longtitude"))
	require.Equal(t, "1", posted.Get("agreement"))
}

func TestSubmitAttendanceAlreadyAttended(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/kkn/rpp/kegiatan_index/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, attendancePage)
	})

	server, client := newFakePortal(t, mux)
	entry := logbook.MainEntry{KegiatanUrl: server.URL + "/kkn/rpp/kegiatan_index/42"}

	// the row for this kegiatan carries no ajaxify control, which is
	// how the portal renders already-attended rows
	outcome, err := client.SubmitAttendance(context.Background(), entry, "Senam pagi", -7.795, 110.37)
	require.NoError(t, err)
	require.False(t, outcome.OK)
	require.Contains(t, outcome.Message, "no attendance action")
}

func TestSubmitAttendanceServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/kkn/rpp/kegiatan_index/42", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	})

	server, client := newFakePortal(t, mux)
	entry := logbook.MainEntry{KegiatanUrl: server.URL + "/kkn/rpp/kegiatan_index/42"}

	// a broken page fetch must surface as an error, not as an
	// already-attended outcome
	_, err := client.SubmitAttendance(context.Background(), entry, "Kerja bakti", -7.795, 110.37)
	var transportErr *core.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestSubmitDailyPresensi(t *testing.T) {
	var posted url.Values

	mux := http.NewServeMux()
	mux.HandleFunc("/kkn/presensi/add", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			posted = r.PostForm
			fmt.Fprint(w, `{"status": "success", "msg": "Presensi harian tersimpan"}`)
			return
		}
		fmt.Fprint(w, `<html><body>
			<form><input type="hidden" name="simasterUGM_token" value="presensi-token"/></form>
		</body></html>`)
	})

	_, client := newFakePortal(t, mux)

	outcome, err := client.SubmitDailyPresensi(context.Background(), "15-07-2024", -7.801, 110.364)
	require.NoError(t, err)
	require.True(t, outcome.OK)

	require.Equal(t, "presensi-token", posted.Get("simasterUGM_token"))
	require.Equal(t, "15-07-2024", posted.Get("tanggalPresensi"))
	require.Equal(t, "1", posted.Get("agreement"))
	require.Equal(t, "-7.801", posted.Get("latitude"))
	require.Equal(t, "110.364", posted.Get("longtitude"))
}

func TestSubmitDailyPresensiRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/kkn/presensi/add", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `<html><body>
				<div class="note note-danger"><p>Presensi sudah dilakukan hari ini</p></div>
			</body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body>
			<form><input type="hidden" name="simasterUGM_token" value="presensi-token"/></form>
		</body></html>`)
	})

	_, client := newFakePortal(t, mux)

	outcome, err := client.SubmitDailyPresensi(context.Background(), "15-07-2024", -7.801, 110.364)
	require.NoError(t, err)
	require.False(t, outcome.OK)
	require.Equal(t, "Presensi sudah dilakukan hari ini", outcome.Message)
}

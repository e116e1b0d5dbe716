package edit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterpretOutcome(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		body       string
		ok         bool
		message    string
	}{
		{
			name:       "json success",
			statusCode: 200,
			body:       `{"status": "success", "msg": "Data berhasil disimpan"}`,
			ok:         true,
			message:    "Data berhasil disimpan",
		},
		{
			name:       "json failure carries the portal message verbatim",
			statusCode: 200,
			body:       `{"status": "error", "msg": "Maksimal 2 kegiatan per rencana"}`,
			ok:         false,
			message:    "Maksimal 2 kegiatan per rencana",
		},
		{
			name:       "json failure without a message",
			statusCode: 200,
			body:       `{"status": "gagal"}`,
			ok:         false,
			message:    `portal returned status "gagal"`,
		},
		{
			name:       "html 200 without a banner is a weak success",
			statusCode: 200,
			body:       `<html><body><p>Data tersimpan.</p></body></html>`,
			ok:         true,
			message:    "request accepted (no json confirmation)",
		},
		{
			name:       "error banner wins even on http 200",
			statusCode: 200,
			body:       `<html><body><div class="note note-danger"><p> Terjadi  kesalahan </p></div></body></html>`,
			ok:         false,
			message:    "Terjadi kesalahan",
		},
		{
			name:       "html 500 without a banner",
			statusCode: 500,
			body:       `<html><body>Internal Server Error</body></html>`,
			ok:         false,
			message:    "portal returned http status 500",
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			outcome := interpretOutcome(testCase.statusCode, []byte(testCase.body))
			require.Equal(t, testCase.ok, outcome.OK)
			require.Equal(t, testCase.message, outcome.Message)
		})
	}
}

func TestParseAttendancePath(t *testing.T) {
	path, ok := parseAttendancePath("/kkn/timeline/presensi_kegiatan/9001/1/77/88/99")
	require.True(t, ok)
	require.Equal(t, AttendancePath{
		TimelineId:      "9001",
		RppJenisProgram: "1",
		RppMhsId:        "77",
		KegiatanMhsId:   "88",
		ProgramMhsId:    "99",
	}, path)

	_, ok = parseAttendancePath("/kkn/too/short")
	require.False(t, ok)

	_, ok = parseAttendancePath("")
	require.False(t, ok)
}

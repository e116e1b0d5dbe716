package logbook

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const bantuFixture = `
<html><body>
<div class="portlet">
  <div class="portlet-title"><div class="caption">Program Bantu</div></div>
  <table class="table">
    <tr><th>No</th><th>PIC</th><th>Program</th><th>Tanggal</th><th>Durasi</th></tr>
    <tr>
      <td>1</td><td>Siti Aminah</td><td>Posyandu balita</td><td>03-07-2025</td><td>120 menit</td>
    </tr>
    <tr><td></td><td>Penimbangan balita (3 Juli 2025 08:00 - 10:00 WIB) [120 menit]</td></tr>
    <tr><td colspan="5"><span class="label label-success">Sudah Presensi</span></td></tr>
    <tr><td></td><td>Penyuluhan gizi (3 Juli 2025 10:00 - 11:00 WIB) [60 menit]</td></tr>
    <tr>
      <td>2</td><td>Andi Wijaya</td><td>Festival dusun</td><td>10-07-2025</td><td>240 menit</td>
    </tr>
    <tr><td></td><td>Gladi bersih (10 Juli 2025 15:00 - 17:00 WIB) [120 menit] Sudah Presensi</td></tr>
  </table>
</div>
</body></html>`

func TestParsePicEntries(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(bantuFixture))
	require.NoError(t, err)

	table, found := findBantuTable(doc)
	require.True(t, found)

	entries := parsePicEntries(table)
	require.Len(t, entries, 2)

	first := entries[0]
	require.Equal(t, 1, first.Index)
	require.Equal(t, "Siti Aminah", first.Pic)
	require.Equal(t, "Posyandu balita", first.Title)
	require.Equal(t, "120 menit", first.Duration)
	require.Len(t, first.SubEntries, 2)

	// NOTE: the marker living on a separate following row is an
	// empirically observed workaround, not documented server behavior;
	// the lookahead is a heuristic and may not generalize
	require.True(t, first.SubEntries[0].Attended)
	require.False(t, first.SubEntries[1].Attended)
	require.Equal(t, StatusNotAttended, first.AttendanceStatus())

	second := entries[1]
	require.Equal(t, "Andi Wijaya", second.Pic)
	require.Len(t, second.SubEntries, 1)
	require.True(t, second.SubEntries[0].Attended)
	require.Equal(t, StatusAttended, second.AttendanceStatus())
}

func TestFindBantuTableMissing(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<html><body><table id=\"tb_rpp\"></table></body></html>",
	))
	require.NoError(t, err)

	_, found := findBantuTable(doc)
	require.False(t, found)
}

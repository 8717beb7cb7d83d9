package testing

import (
	"fmt"
	"strings"
)

// SampleCollection is a small rekordbox export.
//
// Tracks 1-3 share a fingerprint with durations 200, 201 and 210 seconds. Track 1 carries energy cues, a hash tag and a
// Camelot-convertible tonality; track 2 has an unencoded location; tracks 4 and 5 differ only by a diacritic and track
// 5 has no duration. The playlist root holds a user playlist and a stale "digger" folder.
const SampleCollection = `<?xml version="1.0" encoding="UTF-8"?>

<DJ_PLAYLISTS Version="1.0.0">
  <PRODUCT Name="rekordbox" Version="6.8.5" Company="AlphaTheta"/>
  <COLLECTION Entries="5">
    <TRACK TrackID="1" Name="Midnight Drive" Artist="Nova" Album="Night" Genre="House" Kind="MP3 File" TotalTime="200" Year="0" AverageBpm="124.00" BitRate="320" Comments="8A - Energy 6 #Euphoric" Rating="153" Location="file://localhost/Users/dj/Music/Midnight%20Drive.mp3" Tonality="Am">
      <TEMPO Inizio="0.025" Bpm="124.00" Metro="4/4" Battito="1"/>
      <POSITION_MARK Name="Drop E7" Type="0" Start="64.500" Num="0"/>
      <POSITION_MARK Name="Outro energy 5" Type="0" Start="180.000" Num="1"/>
      <POSITION_MARK Name="E7 break" Type="0" Start="90.000" Num="2"/>
    </TRACK>
    <TRACK TrackID="2" Name="Midnight Drive" Artist="Nova" Genre="" TotalTime="201" Year="2019" AverageBpm="124.00" BitRate="320" Comments="" Rating="0" Location="file://localhost/Users/dj/Music/Midnight Drive (1).mp3" Tonality="8A"/>
    <TRACK TrackID="3" Name="Midnight Drive" Artist="Nova" Genre="" TotalTime="210" Year="" AverageBpm="123.50" BitRate="256" Comments="" Rating="255" Location="file://localhost/Users/dj/Music/Caf%C3%A9.mp3" Tonality="F#m"/>
    <TRACK TrackID="4" Name="Sunrise" Artist="Tiësto" Genre="Trance" TotalTime="415" Year="2001" AverageBpm="138.00" BitRate="320" Comments="Energy 8" Rating="0" Location="file://localhost/Users/dj/Music/Sunrise.mp3" Tonality="Db"/>
    <TRACK TrackID="5" Name="Sunrise" Artist="Tiesto" Genre="" TotalTime="0" Year="" AverageBpm="0.00" BitRate="0" Comments="" Rating="0" Location="file://localhost/Users/dj/Music/Sunrise%20(Edit).mp3" Tonality=""/>
  </COLLECTION>
  <PLAYLISTS>
    <NODE Type="0" Name="ROOT" Count="2">
      <NODE Name="Favourites" Type="1" KeyType="0" Entries="2">
        <TRACK Key="1"/>
        <TRACK Key="4"/>
      </NODE>
      <NODE Type="0" Name="digger" Count="1">
        <NODE Name="Old" Type="1" KeyType="0" Entries="1">
          <TRACK Key="2"/>
        </NODE>
      </NODE>
    </NODE>
  </PLAYLISTS>
</DJ_PLAYLISTS>
`

// MinimalCollection has a collection but no PLAYLISTS section.
const MinimalCollection = `<?xml version="1.0" encoding="UTF-8"?>
<DJ_PLAYLISTS Version="1.0.0">
  <COLLECTION Entries="1">
    <TRACK TrackID="10" Name="Solo" Artist="One" TotalTime="180" Year="0"/>
  </COLLECTION>
</DJ_PLAYLISTS>
`

// GeneratedCollection builds a collection of n untagged tracks with ids 1..n, distinct names and no genre or year.
func GeneratedCollection(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<DJ_PLAYLISTS Version="1.0.0">` + "\n")
	fmt.Fprintf(&b, "  <COLLECTION Entries=\"%d\">\n", n)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b,
			"    <TRACK TrackID=\"%d\" Name=\"Track %d\" Artist=\"Artist %d\" Genre=\"\" Year=\"\" TotalTime=\"%d\" AverageBpm=\"120.00\" Comments=\"\" Location=\"file://localhost/music/%d.mp3\"/>\n",
			i, i, i, 180+i, i)
	}
	b.WriteString("  </COLLECTION>\n</DJ_PLAYLISTS>\n")
	return b.String()
}

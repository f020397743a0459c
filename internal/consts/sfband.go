// Copyright 2017 Hajime Hoshi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package consts

// SfBandIndicesLong and SfBandIndicesShort index the two arrays returned
// by SfBandTable.
const (
	SfBandIndicesLong = iota
	SfBandIndicesShort
)

// SfBandTable holds the scale-factor-band boundary tables for one sample
// rate: Long has 22 band starts plus a trailing sentinel (576); Short has
// 13 per-window band starts plus a trailing sentinel (192, i.e. 576/3).
type SfBandTable struct {
	Long  [23]int
	Short [14]int
}

// sfBandIndices is indexed [lsf][sampleRateIndex], where lsf is 0 for
// MPEG-1 and 1 for MPEG-2/2.5. The ISO extension does not define a
// separate band table for MPEG-2.5; like other lightweight decoders we
// reuse the MPEG-2 row for 2.5's lower sample rates (the partitioning is
// defined relative to the granule length, not the absolute sample rate).
var sfBandIndices = [2][3]SfBandTable{
	{
		{ // 44100 Hz
			Long:  [23]int{0, 4, 8, 12, 16, 20, 24, 30, 36, 44, 52, 62, 74, 90, 110, 134, 162, 196, 238, 288, 342, 418, 576},
			Short: [14]int{0, 4, 8, 12, 16, 22, 30, 40, 52, 66, 84, 106, 136, 192},
		},
		{ // 48000 Hz
			Long:  [23]int{0, 4, 8, 12, 16, 20, 24, 30, 36, 42, 50, 60, 72, 88, 106, 128, 156, 190, 230, 276, 330, 384, 576},
			Short: [14]int{0, 4, 8, 12, 16, 22, 28, 38, 50, 64, 80, 100, 126, 192},
		},
		{ // 32000 Hz
			Long:  [23]int{0, 4, 8, 12, 16, 20, 24, 30, 36, 44, 54, 66, 82, 102, 126, 156, 194, 240, 296, 364, 448, 550, 576},
			Short: [14]int{0, 4, 8, 12, 16, 22, 30, 42, 58, 78, 104, 138, 180, 192},
		},
	},
	{
		{ // 22050 Hz (MPEG-2) / 11025 Hz (MPEG-2.5)
			Long:  [23]int{0, 6, 12, 18, 24, 30, 36, 44, 54, 66, 80, 96, 116, 140, 168, 200, 238, 284, 336, 396, 464, 522, 576},
			Short: [14]int{0, 4, 8, 12, 18, 24, 32, 42, 56, 74, 100, 132, 174, 192},
		},
		{ // 24000 Hz (MPEG-2) / 12000 Hz (MPEG-2.5)
			Long:  [23]int{0, 6, 12, 18, 24, 30, 36, 44, 54, 66, 80, 96, 114, 136, 162, 194, 232, 278, 332, 394, 464, 540, 576},
			Short: [14]int{0, 4, 8, 12, 18, 26, 36, 48, 62, 80, 104, 136, 180, 192},
		},
		{ // 16000 Hz (MPEG-2) / 8000 Hz (MPEG-2.5)
			Long:  [23]int{0, 6, 12, 18, 24, 30, 36, 44, 54, 66, 80, 96, 116, 140, 168, 200, 238, 284, 336, 396, 464, 522, 576},
			Short: [14]int{0, 4, 8, 12, 18, 26, 36, 48, 62, 80, 104, 134, 174, 192},
		},
	},
}

// SfBandIndices returns the scale-factor band table for the given version
// and sample-rate index.
func SfBandIndices(v Version, sfreq SamplingFrequency) SfBandTable {
	lsf := 0
	if v.LowSamplingFrequency() {
		lsf = 1
	}
	return sfBandIndices[lsf][sfreq]
}

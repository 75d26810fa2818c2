package custody

import (
	"testing"

	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
)

func TestReadOptions(t *testing.T) {
	type entry struct {
		Key int `json:"key"`
	}

	cases := map[string]struct {
		opts    Options
		want    []entry
		wantErr *errors.Error
	}{
		"happy path": {
			opts: Options{"list": []byte(`[{"key": 1}, {"key": 2}]`)},
			want: []entry{{Key: 1}, {Key: 2}},
		},
		"missing section": {
			opts: Options{"other": []byte(`[]`)},
			want: nil,
		},
		"wrong value": {
			opts:    Options{"list": []byte(`[{"key": "dasdasas"}]`)},
			wantErr: errors.ErrInput,
		},
		"wrong body": {
			opts:    Options{"list": []byte(`"adasda"`)},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got []entry
			err := tc.opts.ReadOptions("list", &got)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

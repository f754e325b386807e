package validate

import "testing"

func TestArgument(t *testing.T) {
	type args struct {
		name  string
		value string
		regex string
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			name: "Host",
			args: args{
				name:  "host",
				value: "my-service-abcdef-ew.a.run.app:443",
				regex: HostRegex,
			},
			wantErr: false,
		},
		{
			name: "Host:MissingPort",
			args: args{
				name:  "host",
				value: "my-service-abcdef-ew.a.run.app",
				regex: HostRegex,
			},
			wantErr: true,
		},
		{
			name: "Host:WithScheme",
			args: args{
				name:  "host",
				value: "https://my-service-abcdef-ew.a.run.app:443",
				regex: HostRegex,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Argument(tt.args.name, tt.args.value, tt.args.regex); (err != nil) != tt.wantErr {
				t.Errorf("Argument() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

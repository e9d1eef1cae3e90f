package directory

import "testing"

func TestSubjectValidate(t *testing.T) {
	tests := []struct {
		name    string
		subject Subject
		wantErr bool
	}{
		{name: "valid", subject: Subject{ExternalID: "EMP001", Name: "Ada"}},
		{name: "max length id", subject: Subject{ExternalID: "1234567890123456", Name: "Ada"}},
		{name: "missing external id", subject: Subject{Name: "Ada"}, wantErr: true},
		{name: "missing name", subject: Subject{ExternalID: "EMP001"}, wantErr: true},
		{name: "external id too long", subject: Subject{ExternalID: "12345678901234567", Name: "Ada"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.subject.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package entity

type ApartmentState string

const (
	ApartmentAvailable ApartmentState = "disponible"
	ApartmentReserved  ApartmentState = "reservado"
	ApartmentSold      ApartmentState = "vendido"
)

var ApartmentStates = []ApartmentState{ApartmentAvailable, ApartmentReserved, ApartmentSold}

func (s ApartmentState) IsValid() bool {
	for _, v := range ApartmentStates {
		if s == v {
			return true
		}
	}
	return false
}

// ResidenceStatus drives the hora invariant: only Cita carries an appointment time.
type ResidenceStatus string

const (
	ResidenceFree        ResidenceStatus = "Libre"
	ResidenceAppointment ResidenceStatus = "Cita"
	ResidenceSold        ResidenceStatus = "Vendido"
)

var ResidenceStatuses = []ResidenceStatus{ResidenceFree, ResidenceAppointment, ResidenceSold}

func (s ResidenceStatus) IsValid() bool {
	for _, v := range ResidenceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func ResidenceStatusNames() []string {
	names := make([]string, 0, len(ResidenceStatuses))
	for _, s := range ResidenceStatuses {
		names = append(names, string(s))
	}
	return names
}

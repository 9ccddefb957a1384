package seeders

import "maintenance-system/pkg/constants"

var adminsData = []struct {
	Name  string
	Email string
}{
	{Name: "Dr. Meera Nair", Email: "admin.science@lab.example.edu"},
}

var labsData = []struct {
	Name       string
	AdminEmail string
}{
	{Name: "Chemistry Lab", AdminEmail: "admin.science@lab.example.edu"},
	{Name: "Physics Lab", AdminEmail: "admin.science@lab.example.edu"},
}

// staffData - сотрудники с контактами по ролям. Пустой email - контакта для роли нет.
var staffData = []struct {
	LabName        string
	Name           string
	AssistantEmail string
	InChargeEmail  string
	NotifyByEmail  bool
}{
	{LabName: "Chemistry Lab", Name: "Arjun Rao", AssistantEmail: "arjun.rao@lab.example.edu", InChargeEmail: "chem.incharge@lab.example.edu", NotifyByEmail: true},
	{LabName: "Physics Lab", Name: "Priya Iyer", AssistantEmail: "priya.iyer@lab.example.edu", InChargeEmail: "phys.incharge@lab.example.edu", NotifyByEmail: false},
}

var equipmentsData = []struct {
	LabName       string
	Type          string
	Code          string
	Name          string
	Company       string
	Specification string
	Location      string
	Status        constants.EquipmentStatus
}{
	{"Chemistry Lab", "Centrifuge", "CH-CF-01", "Benchtop Centrifuge", "Eppendorf", "5810R, 4000 rpm", "Bench 2", constants.EquipmentActive},
	{"Chemistry Lab", "Spectrophotometer", "CH-SP-01", "UV-Vis Spectrophotometer", "Shimadzu", "UV-1800", "Instrument room", constants.EquipmentActive},
	{"Chemistry Lab", "Fume hood", "CH-FH-02", "Fume Hood #2", "Labconco", "Protector XStream", "Wall B", constants.EquipmentDamaged},
	{"Physics Lab", "Oscilloscope", "PH-OS-01", "Digital Oscilloscope", "Tektronix", "TBS1052C", "Bench 1", constants.EquipmentActive},
	{"Physics Lab", "Power supply", "PH-PS-03", "DC Power Supply", "Keysight", "E36313A", "Bench 4", constants.EquipmentActive},
}

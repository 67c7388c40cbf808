package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const DefaultFilePermissions = 0600

type SavedAreas struct {
	NextAreaId int64
	Areas      []Area
}

func SaveAreas(fileLocation string, r *Registry) error {
	r.areaLock.Lock()
	defer r.areaLock.Unlock()

	var saved SavedAreas

	for _, area := range r.areas {
		saved.Areas = append(saved.Areas, *area)
	}

	saved.NextAreaId = *r.nextAreaId

	data, err := json.Marshal(saved)
	if err != nil {
		return err
	}

	return safeWriteFile(fileLocation, data, DefaultFilePermissions)
}

func LoadAreas(fileLocation string, r *Registry) error {
	if _, err := os.Stat(fileLocation); err != nil {
		return nil
	}

	data, err := os.ReadFile(fileLocation)
	if err != nil {
		return err
	}

	var loaded SavedAreas

	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}

	r.areaLock.Lock()

	r.nextAreaId = &loaded.NextAreaId

	for _, area := range loaded.Areas {
		copyArea := area
		copyArea.ParentArea = 0
		r.areas[area.Identifier] = &copyArea
		r.rootAreas = append(r.rootAreas, area.Identifier)
	}

	r.areaLock.Unlock()

	for _, area := range loaded.Areas {
		if area.ParentArea != RootAreaId {
			if err := r.MoveArea(area.Identifier, area.ParentArea); err != nil {
				return err
			}
		}
	}

	return nil
}

func SaveDevices(fileLocation string, r *Registry) error {
	r.deviceLock.Lock()
	defer r.deviceLock.Unlock()

	saved := map[string]DeviceMetadata{}

	for id, record := range r.devices {
		if record.metadata.Name == "" && len(record.metadata.Areas) == 0 {
			continue
		}

		saved[id] = record.metadata
	}

	data, err := json.Marshal(saved)
	if err != nil {
		return err
	}

	return safeWriteFile(fileLocation, data, DefaultFilePermissions)
}

func LoadDevices(fileLocation string, r *Registry) error {
	if _, err := os.Stat(fileLocation); err != nil {
		return nil
	}

	data, err := os.ReadFile(fileLocation)
	if err != nil {
		return err
	}

	loaded := map[string]DeviceMetadata{}
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}

	for id, dm := range loaded {
		r.restoreDevice(id)

		if err := r.NameDevice(id, dm.Name); err != nil {
			return err
		}

		for _, area := range dm.Areas {
			if err := r.AddDeviceToArea(id, area); err != nil {
				return err
			}
		}
	}

	return nil
}

// restoreDevice re-creates a metadata only entry; the descriptor arrives once
// the first snapshot registers live devices.
func (r *Registry) restoreDevice(id string) {
	r.deviceLock.Lock()
	defer r.deviceLock.Unlock()

	if _, found := r.devices[id]; found {
		return
	}

	r.devices[id] = &deviceRecord{}
}

func safeWriteFile(name string, data []byte, perm os.FileMode) error {
	ut := time.Now().UnixNano() / int64(time.Millisecond)
	baseName := fmt.Sprintf("%s-%d", name, ut)
	newName := fmt.Sprintf("%s-new", baseName)
	oldName := fmt.Sprintf("%s-old", baseName)

	if err := os.WriteFile(newName, data, perm); err != nil {
		return fmt.Errorf("failed to write new file: %w", err)
	}

	_, err := os.Stat(name)
	oldExists := !os.IsNotExist(err)

	if oldExists {
		if err := os.Rename(name, oldName); err != nil {
			return fmt.Errorf("failed to move old file to temporary location: %w", err)
		}
	}

	if err := os.Rename(newName, name); err != nil {
		return fmt.Errorf("failed to move new file to file location: %w", err)
	}

	if oldExists {
		if err := os.Remove(oldName); err != nil {
			return fmt.Errorf("failed to remove old file: %w", err)
		}
	}

	return nil
}
